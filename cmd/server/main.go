package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxreader/voxreader/internal/api"
	"github.com/voxreader/voxreader/internal/config"
	"github.com/voxreader/voxreader/internal/metadata"
	"github.com/voxreader/voxreader/internal/pipeline"
	"github.com/voxreader/voxreader/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open library store", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	var lookup metadata.Lookup
	if cfg.MetadataLookup {
		lookup = metadata.NewOpenLibraryClient(cfg.OpenLibraryURL)
	}
	enricher := metadata.NewEnricher(log, lookup)

	orch := pipeline.NewOrchestrator(cfg, st, enricher, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		st.Close()
	}()

	log.Info("starting voxreader", "host", cfg.Host, "port", cfg.Port, "db", cfg.DatabasePath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
