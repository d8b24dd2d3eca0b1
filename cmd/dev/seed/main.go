package main

import (
	"context"
	"fmt"
	"os"

	"garageflow/internal/mechanic"
	"garageflow/internal/parts"
	"garageflow/pkg/config"
	"garageflow/pkg/db"
)

// Seeds the dev mechanic and part datasets into Postgres.
func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	mechRepo := mechanic.NewRepository(pool)
	for _, m := range mechanic.SeedMechanics() {
		if err := mechRepo.Upsert(ctx, m); err != nil {
			fmt.Fprintf(os.Stderr, "upsert mechanic %s: %v\n", m.ID, err)
			os.Exit(1)
		}
	}

	partsRepo := parts.NewRepository(pool)
	for _, p := range parts.SeedParts() {
		if err := partsRepo.Upsert(ctx, p); err != nil {
			fmt.Fprintf(os.Stderr, "upsert part %s: %v\n", p.ID, err)
			os.Exit(1)
		}
	}

	fmt.Println("seed data applied")
}
