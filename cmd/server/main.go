// Package main runs the market mood HTTP service: keyword scoring,
// credibility weighting, top-movers aggregation, history queries, and a
// WebSocket feed of computed snapshots.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"market-mood-lab/internal/aggregation"
	"market-mood-lab/internal/api"
	"market-mood-lab/internal/config"
	"market-mood-lab/internal/headlines"
	"market-mood-lab/internal/observability"
	"market-mood-lab/internal/query"
	"market-mood-lab/internal/scoring"
	"market-mood-lab/internal/snapshots"
	"market-mood-lab/internal/storage"
	chstore "market-mood-lab/internal/storage/clickhouse"
	"market-mood-lab/internal/storage/memory"
	"market-mood-lab/internal/storage/migrations"
	pgstore "market-mood-lab/internal/storage/postgres"
	"market-mood-lab/internal/weighting"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars and config file as defaults)
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	listenAddr := flag.String("listen-addr", "", "HTTP listen address (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides config)")
	headlinesPath := flag.String("headlines", "", "Path to headline pool JSON (overrides config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory with per-symbol snapshot files (overrides config)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	demoMode := flag.Bool("demo-mode", false, "Replace market aggregates with random draws")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
		cfg.Storage.UseMemory = false
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickhouseDSN = *clickhouseDSN
	}
	if *headlinesPath != "" {
		cfg.Headlines.Path = *headlinesPath
	}
	if *snapshotDir != "" {
		cfg.Snapshots.Dir = *snapshotDir
	}
	if *useMemory {
		cfg.Storage.UseMemory = true
	}
	if *demoMode {
		cfg.Aggregation.DemoMode = true
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	history, archive, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// WebSocket hub for snapshot broadcasts
	hub := api.NewHub(logger, observability.DefaultMetrics)
	go hub.Run()

	runner := aggregation.New(aggregation.Options{
		Source:  headlines.NewFileSource(cfg.Headlines.Path),
		History: history,
		Archive: archive,
		Scorer:  scoring.NewScorer(nil, nil),
		Engine:  weighting.NewEngine(nil, 0),
		Config: aggregation.Config{
			JitterAmplitude: cfg.Aggregation.JitterAmplitude,
			DisableJitter:   cfg.Aggregation.DisableJitter,
			RestSize:        cfg.Aggregation.RestSize,
			TopMessages:     cfg.Aggregation.TopMessages,
			LookbackHours:   cfg.Aggregation.LookbackHours,
			DemoMode:        cfg.Aggregation.DemoMode,
		},
		Logger:  logger,
		Metrics: observability.DefaultMetrics,
	})

	server := api.NewServer(api.Options{
		Runner:    runner,
		Queries:   query.NewService(history),
		Scorer:    scoring.NewScorer(nil, nil),
		Snapshots: snapshots.NewDir(cfg.Snapshots.Dir),
		Hub:       hub,
		Logger:    logger,
		Metrics:   observability.DefaultMetrics,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.Routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s (memory storage: %v, demo mode: %v)",
		cfg.Server.ListenAddr, cfg.Storage.UseMemory, cfg.Aggregation.DemoMode)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the history and archive stores, running migrations
// for the database-backed pair.
func createStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.HistoryStore, storage.MessageArchiveStore, func(), error) {
	if cfg.Storage.UseMemory {
		logger.Println("Using in-memory storage")
		return memory.NewHistoryStore(), memory.NewMessageArchiveStore(), func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return pgstore.NewHistoryStore(pool), chstore.NewMessageArchiveStore(chConn), cleanup, nil
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
