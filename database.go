package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const retryDelay = 2 * time.Second

// openDB connects to PostgreSQL, waiting for the server to come up.
func openDB(ctx context.Context, cfg config, log zerolog.Logger) (*sql.DB, error) {
	pgCfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	for i := 0; i < cfg.DBRetries; i++ {
		db := stdlib.OpenDB(*pgCfg)
		err = db.PingContext(ctx)
		if err == nil {
			log.Info().Str("host", pgCfg.Host).Str("database", pgCfg.Database).Msg("database connection established")
			return db, nil
		}
		db.Close()
		if i == cfg.DBRetries-1 {
			break
		}

		// Log the actual error on the first attempts and every 10th after that
		ev := log.Warn().Int("attempt", i+1).Int("max_attempts", cfg.DBRetries).Dur("retry_in", retryDelay)
		if i%10 == 0 || i < 5 {
			ev = ev.Err(err)
		}
		ev.Msg("database not ready")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.DBRetries, err)
}

// initDB connects and makes sure the schema exists.
func initDB(ctx context.Context, cfg config, log zerolog.Logger) (*sql.DB, error) {
	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
