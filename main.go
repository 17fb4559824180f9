package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"finance-tracker-backend/internal/logger"
)

func main() {
	migrateCmd := flag.Bool("migrate", false, "Run database migration and exit")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo transactions and budgets (idempotent)")
	verifyDBCmd := flag.Bool("verify-db", false, "Check the database connection and exit")
	flag.Parse()

	cfg, err := loadConfig()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *verifyDBCmd:
		if err := verifyDatabaseConnection(ctx, cfg, log); err != nil {
			log.Fatal().Err(err).Msg("Database verification failed")
		}
		return
	case *migrateCmd:
		if err := setupDatabase(ctx, cfg, log); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		log.Info().Msg("Migration completed successfully")
		return
	case *seedDemoCmd:
		db, err := initDB(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		if err := seedDemoData(ctx, db); err != nil {
			log.Error().Err(err).Msg("Seeding demo data failed")
			return
		}
		log.Info().Msg("Demo data seeded")
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(ctx context.Context, cfg config, log zerolog.Logger) error {
	db, err := initDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := initRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Continuing without Redis cache")
	} else {
		defer redisClient.Close()
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	s := newServer(newPGStore(db), newCache(redisClient, log), log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(s, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
