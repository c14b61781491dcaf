package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spiritstitch/atelier/internal/gateway"
	"github.com/spiritstitch/atelier/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		action string
		dsn    string
	)

	flag.StringVar(&action, "action", "bootstrap", "action: bootstrap|probe")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: STITCH_DB_* environment)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		cfg, err := gateway.LoadConfig()
		if err != nil {
			fail("load config: %v", err)
		}
		dsn = cfg.DSN()
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(action)) {
	case "bootstrap":
		if err := store.Bootstrap(ctx); err != nil {
			fail("bootstrap failed: %v", err)
		}
		fmt.Println("bootstrap ok: schema is in place")
	case "probe":
		if !store.Probe(ctx) {
			fail("probe failed: database is not responding")
		}
		fmt.Println("probe ok")
	default:
		fail("unsupported action: %s (use bootstrap|probe)", action)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
