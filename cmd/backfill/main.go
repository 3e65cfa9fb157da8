// Package main backfills daily mood history for a symbol, replacing any
// existing rows in the covered date range.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"market-mood-lab/internal/domain"
	"market-mood-lab/internal/storage"
	"market-mood-lab/internal/storage/migrations"
	pgstore "market-mood-lab/internal/storage/postgres"
)

func main() {
	symbol := flag.String("symbol", "", "Symbol to backfill (required)")
	days := flag.Int("days", 30, "Number of trailing days to backfill")
	score := flag.Float64("score", 0, "Fixed mood score in [-1, 1]; random per day when unset")
	fixed := flag.Bool("fixed-score", false, "Use the -score value instead of random draws")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")

	flag.Parse()

	logger := log.New(os.Stdout, "[backfill] ", log.LstdFlags)

	if *symbol == "" {
		logger.Fatal("--symbol is required")
	}
	if *days < 1 {
		logger.Fatal("--days must be at least 1")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (or set POSTGRES_DSN)")
	}
	if *fixed && (*score < -1 || *score > 1) {
		logger.Fatalf("--score must be in [-1, 1], got %f", *score)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	store := pgstore.NewHistoryStore(pool)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	today := domain.Day(time.Now())

	replaced := 0
	for i := *days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)

		// Drop any existing row so the new score fully replaces it.
		existed := true
		if err := store.Delete(ctx, *symbol, date); err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				logger.Fatalf("Failed to delete %s %s: %v", *symbol, date.Format(domain.DateLayout), err)
			}
			existed = false
		}

		mood := *score
		if !*fixed {
			mood = rng.Float64()*2 - 1
		}

		entry := &domain.HistoryEntry{Symbol: *symbol, Date: date, MoodScore: mood}
		if err := store.Upsert(ctx, entry); err != nil {
			logger.Fatalf("Failed to upsert %s %s: %v", *symbol, date.Format(domain.DateLayout), err)
		}

		status := "inserted"
		if existed {
			status = "replaced"
			replaced++
		}
		fmt.Printf("%s %s: %.2f (%s)\n", *symbol, date.Format(domain.DateLayout), mood, status)
	}

	logger.Printf("Backfilled %d days for %s (%d replaced)", *days, *symbol, replaced)
}
