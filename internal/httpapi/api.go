package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"teamwerk.io/internal/audit"
	"teamwerk.io/internal/auth"
	"teamwerk.io/internal/obs"
	"teamwerk.io/internal/org"
	"teamwerk.io/internal/provision"
	"teamwerk.io/internal/tenant"
)

// ReadyProbe reports service readiness (database ping when configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the control-plane services into the HTTP layer.
type Config struct {
	Guard     *auth.Guard
	Tenants   *tenant.Service
	Users     *provision.Service
	Bootstrap *org.Engine
	Recorder  *audit.Recorder
	Query     *audit.Query
	Ready     ReadyProbe
	Version   string

	// Rate limiter settings; zero values disable limiting.
	RateBurst     int
	RatePerSecond int
}

// API is the HTTP layer of the administrative control plane.
type API struct {
	mux       *http.ServeMux
	guard     *auth.Guard
	tenants   *tenant.Service
	users     *provision.Service
	bootstrap *org.Engine
	recorder  *audit.Recorder
	query     *audit.Query

	readyProbe ReadyProbe
	version    string

	rateBurst     int
	ratePerSecond int
}

func New(cfg Config) (*API, error) {
	if cfg.Guard == nil || cfg.Tenants == nil || cfg.Users == nil ||
		cfg.Bootstrap == nil || cfg.Recorder == nil || cfg.Query == nil {
		return nil, errors.New("guard, services, recorder and query are required")
	}
	a := &API{
		mux:           http.NewServeMux(),
		guard:         cfg.Guard,
		tenants:       cfg.Tenants,
		users:         cfg.Users,
		bootstrap:     cfg.Bootstrap,
		recorder:      cfg.Recorder,
		query:         cfg.Query,
		readyProbe:    cfg.Ready,
		version:       cfg.Version,
		rateBurst:     cfg.RateBurst,
		ratePerSecond: cfg.RatePerSecond,
	}

	// admin surface
	a.mux.HandleFunc("/tenants", a.handleTenants)
	a.mux.HandleFunc("/tenants/", a.handleTenantScoped)
	a.mux.HandleFunc("/audit-log", a.handleGlobalAuditLog)

	// health/ready
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	if a.rateBurst > 0 && a.ratePerSecond > 0 {
		h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	}
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "teamwerk-admin",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
