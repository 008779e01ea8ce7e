package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eatprep/cbt-player/internal/config"
	"github.com/eatprep/cbt-player/internal/database"
	"github.com/eatprep/cbt-player/internal/handler"
	"github.com/eatprep/cbt-player/internal/logger"
	"github.com/eatprep/cbt-player/internal/repository"
	"github.com/eatprep/cbt-player/internal/router"
	"github.com/eatprep/cbt-player/internal/service"
	"github.com/eatprep/cbt-player/internal/snapshot"
	"github.com/eatprep/cbt-player/internal/validator"
	"github.com/eatprep/cbt-player/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("question_source", cfg.QuestionSource).
		Str("snapshot_backend", cfg.SnapshotBackend).
		Msg("Starting CBT player")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Question Repository ───────────────────────────────────────────
	var questionRepo repository.QuestionRepository
	switch cfg.QuestionSource {
	case config.SourceSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open question database")
		}
		defer db.Close()
		questionRepo = repository.NewSQLiteQuestionRepository(db)
	case config.SourceFile:
		questionRepo = repository.NewFileQuestionRepository(cfg.QuestionDir)
	default:
		log.Fatal().Str("source", cfg.QuestionSource).Msg("Unknown question source")
	}

	// ─── Snapshot Store ────────────────────────────────────────────────
	var snapStore snapshot.Store
	switch cfg.SnapshotBackend {
	case config.SnapshotRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		snapStore = snapshot.NewRedisStore(rdb)
	case config.SnapshotFile:
		snapStore = snapshot.NewFileStore(cfg.SnapshotPath)
	default:
		log.Fatal().Str("backend", cfg.SnapshotBackend).Msg("Unknown snapshot backend")
	}

	// ─── Start Snapshot Worker ─────────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	snapWorker := worker.NewSnapshotWorker(snapStore, log)
	go snapWorker.Start(workerCtx)

	// ─── Services and Handlers ─────────────────────────────────────────
	sessionService := service.NewSessionService(questionRepo, snapStore, snapWorker, cfg.DefaultTimeLimit, log)

	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessionService),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the snapshot worker and wait for the queue to drain, so
	// the last answer recorded is on disk before exit.
	workerCancel()
	select {
	case <-snapWorker.Done():
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Snapshot worker drain timed out")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
