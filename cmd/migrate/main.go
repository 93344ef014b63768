package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/survey/backend/internal/config"
	"github.com/survey/backend/internal/pkg/distlock"
	"github.com/survey/backend/internal/pkg/logger"
)

const lockKey = "survey:migrate"

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	if cfg.Database.URL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	dir := "migrations"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect failed", "error", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("ping failed", "error", err)
	}

	if listOnly {
		if err := listTables(ctx, db); err != nil {
			logger.Fatal("list tables failed", "error", err)
		}
		return
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		if opts, err := redis.ParseURL(cfg.Redis.URL); err == nil {
			redisClient = redis.NewClient(opts)
			defer redisClient.Close()
		}
	}

	lock := distlock.NewLock(redisClient, db, lockKey, 10*time.Minute)
	err = distlock.Run(ctx, lock, func(ctx context.Context) error {
		return migrate(ctx, db, dir)
	})
	if errors.Is(err, distlock.ErrNotAcquired) {
		logger.Info("another instance is running migrations, skipping")
		return
	}
	if err != nil {
		logger.Fatal("migrations failed", "error", err)
	}
	logger.Info("migrations complete")
}

func listTables(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "SELECT tablename FROM pg_tables WHERE schemaname='public' ORDER BY tablename")
	if err != nil {
		return err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return err
		}
		fmt.Println(" ", t)
		n++
	}
	fmt.Printf("Total: %d tables\n", n)
	return rows.Err()
}

// migrate applies every .sql file in dir that is not yet recorded in
// schema_migrations, in lexical order, each in its own transaction.
func migrate(ctx context.Context, db *sql.DB, dir string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, f := range files {
		var exists bool
		if err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)", f,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check %s: %w", f, err)
		}
		if exists {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if err := apply(ctx, db, f, string(data)); err != nil {
			return err
		}
		logger.Info("migration applied", "file", f)
		applied++
	}
	logger.Info("migrations done", "applied", applied, "total", len(files))
	return nil
}

func apply(ctx context.Context, db *sql.DB, name, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", name, err)
	}
	defer tx.Rollback()

	if strings.TrimSpace(content) != "" {
		if _, err := tx.ExecContext(ctx, content); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	return tx.Commit()
}
