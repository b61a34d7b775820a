package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"regime-rotation/internal/api"
	"regime-rotation/internal/config"
	"regime-rotation/internal/logging"
	"regime-rotation/internal/metrics"
	"regime-rotation/internal/store"
	"regime-rotation/internal/store/duckdb"
)

const maxStoredRuns = 256

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config (optional)")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(2)
	}
	defer closer.Close()

	table, err := cfg.SectorTable()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sector table")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	runs := store.NewRunStore(cfg.Server.RunTTL, maxStoredRuns)
	defer runs.Close()

	var persist store.Persister
	if cfg.Store.DuckDBPath != "" {
		client, err := duckdb.Open(context.Background(), cfg.Store.DuckDBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.DuckDBPath).Msg("failed to open duckdb")
		}
		defer client.Close()
		persist = duckdb.NewRunRepo(client)
		log.Info().Str("path", cfg.Store.DuckDBPath).Msg("persisting runs to duckdb")
	}

	router := api.NewRouter(api.Deps{
		Params:   cfg.Backtest,
		Forest:   cfg.Forest.Params(),
		Seed:     cfg.Forest.Seed,
		Table:    table,
		Runs:     runs,
		Persist:  persist,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		MaxBody:  cfg.Server.MaxBody,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Int("regimes", table.Len()).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}
