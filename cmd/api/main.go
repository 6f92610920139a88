package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamwerk.io/internal/audit"
	"teamwerk.io/internal/auth"
	"teamwerk.io/internal/httpapi"
	"teamwerk.io/internal/identity"
	"teamwerk.io/internal/identity/remote"
	"teamwerk.io/internal/obs"
	"teamwerk.io/internal/org"
	"teamwerk.io/internal/provision"
	"teamwerk.io/internal/store/mem"
	"teamwerk.io/internal/store/pg"
	"teamwerk.io/internal/tenant"
)

var version = "0.3.1"

func main() {
	obs.Init()

	addr := os.Getenv("TEAMWERK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	var (
		db *sql.DB

		tenantStore   tenant.Store
		employeeStore provision.EmployeeStore
		roleStore     provision.RoleStore
		unitStore     org.Store
		auditStore    audit.Store
		privStore     auth.PrivilegeStore
		idp           identity.Service
	)

	if dsn := os.Getenv("TEAMWERK_PG_DSN"); dsn != "" {
		store, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db = store.DB()
		tenantStore = store
		employeeStore = store
		roleStore = store
		unitStore = store
		auditStore = store
		privStore = store
		idp = pg.NewDirectory(store)
	} else {
		store := mem.New()
		tenantStore = store
		employeeStore = store
		roleStore = store
		unitStore = store
		auditStore = store
		privStore = store
		idp = mem.NewDirectory()
		if sa := os.Getenv("TEAMWERK_DEV_SUPERADMIN"); sa != "" {
			store.GrantSuperadmin(sa)
		}
		log.Println("TEAMWERK_PG_DSN not set, using in-memory stores")
	}

	// An external identity provider replaces the embedded directory.
	if base := os.Getenv("TEAMWERK_IDENTITY_URL"); base != "" {
		client, err := remote.New(base, os.Getenv("TEAMWERK_IDENTITY_KEY"))
		if err != nil {
			log.Fatalf("identity client: %v", err)
		}
		idp = client
	}

	guard, err := auth.NewGuard(privStore)
	if err != nil {
		log.Fatalf("guard: %v", err)
	}
	tenants, err := tenant.NewService(tenantStore)
	if err != nil {
		log.Fatalf("tenant service: %v", err)
	}
	users, err := provision.NewService(tenantStore, idp, employeeStore, roleStore)
	if err != nil {
		log.Fatalf("provision service: %v", err)
	}
	bootstrap, err := org.NewEngine(tenantStore, unitStore)
	if err != nil {
		log.Fatalf("bootstrap engine: %v", err)
	}
	recorder, err := audit.NewRecorder(auditStore)
	if err != nil {
		log.Fatalf("audit recorder: %v", err)
	}
	query, err := audit.NewQuery(auditStore)
	if err != nil {
		log.Fatalf("audit query: %v", err)
	}

	api, err := httpapi.New(httpapi.Config{
		Guard:         guard,
		Tenants:       tenants,
		Users:         users,
		Bootstrap:     bootstrap,
		Recorder:      recorder,
		Query:         query,
		Ready:         httpapi.ReadyProbe{DB: db},
		Version:       version,
		RateBurst:     20,
		RatePerSecond: 10,
	})
	if err != nil {
		log.Fatalf("api: %v", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting teamwerk-admin %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
