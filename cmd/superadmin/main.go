package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"teamwerk.io/internal/auth"
	"teamwerk.io/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	var (
		dsn = flag.String("dsn", os.Getenv("TEAMWERK_PG_DSN"), "PostgreSQL DSN")
		ttl = flag.Duration("ttl", time.Hour, "Token lifetime (token command)")
		by  = flag.String("by", "", "Operator id recorded as grantor (grant command)")
	)
	flag.Parse()

	if flag.NArg() < 2 {
		log.Fatal("usage: superadmin [grant|revoke|token] <user-id>")
	}
	cmd, userID := flag.Arg(0), flag.Arg(1)

	if cmd == "token" {
		// Token minting only needs the shared secret, not the database.
		token, err := auth.GenerateToken(userID, nil, *ttl)
		if err != nil {
			log.Fatalf("mint token: %v", err)
		}
		fmt.Println(token)
		return
	}

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or TEAMWERK_PG_DSN")
	}
	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cmd {
	case "grant":
		err = store.GrantSuperadmin(ctx, userID, *by)
	case "revoke":
		err = store.RevokeSuperadmin(ctx, userID)
	default:
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("superadmin %s: %v", cmd, err)
	}
}
