package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// setupDatabase creates tables and indexes.
func setupDatabase(ctx context.Context, cfg config, log zerolog.Logger) error {
	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Msg("creating database schema")
	if err := ensureSchema(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("schema created successfully")
	return nil
}

// verifyDatabaseConnection pings the database once, without retries.
func verifyDatabaseConnection(ctx context.Context, cfg config, log zerolog.Logger) error {
	pgCfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	db := stdlib.OpenDB(*pgCfg)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("database connection verified")
	return nil
}
