package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garageflow/internal/booking"
	"garageflow/internal/httpapi"
	"garageflow/internal/mechanic"
	"garageflow/internal/notify"
	"garageflow/internal/parts"
	"garageflow/internal/workflow"
	"garageflow/pkg/config"
	"garageflow/pkg/db"
	"garageflow/pkg/logger"
	"garageflow/pkg/metrics"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("garageflow")

	var (
		store     booking.Store
		directory httpapi.Directory
		catalog   workflow.PartsCatalog
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db open failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.MigrationsPath != "" {
			if err := db.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
				log.Error("migrate failed", "error", err)
				os.Exit(1)
			}
		}

		store = booking.NewPGStore(pool)
		directory = mechanic.NewRepository(pool)
		catalog = parts.NewRepository(pool)
		log.Info("using postgres store")
	} else {
		store = booking.NewMemoryStore()
		directory = mechanic.NewMemoryDirectory(mechanic.SeedMechanics())
		catalog = parts.NewMemoryCatalog(parts.SeedParts())
		log.Info("no DATABASE_URL set, using in-memory store with seed data")
	}

	dispatcher := notify.NewDispatcher(store, log, m,
		notify.NewMessagingChannel(cfg.Notify, log),
		notify.NewEmailChannel(cfg.Notify, log),
	)
	engine := workflow.NewEngine(directory, catalog)
	bookings := workflow.NewService(store, engine, dispatcher, log, m)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:       cfg,
		Log:       log,
		Bookings:  bookings,
		Mechanics: directory,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http serve failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
