package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/polisure/certprep-backend/internal/ai"
	"github.com/polisure/certprep-backend/internal/config"
	"github.com/polisure/certprep-backend/internal/database"
	"github.com/polisure/certprep-backend/internal/exam"
	"github.com/polisure/certprep-backend/internal/handler"
	"github.com/polisure/certprep-backend/internal/logger"
	"github.com/polisure/certprep-backend/internal/repository"
	"github.com/polisure/certprep-backend/internal/router"
	"github.com/polisure/certprep-backend/internal/service"
	"github.com/polisure/certprep-backend/internal/validator"
	"github.com/polisure/certprep-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting CertPrep Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	agentRepo := repository.NewAgentRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	bankService := service.NewBankService(questionRepo, log)
	practiceService := service.NewPracticeService(bankService, log)
	mockService := service.NewMockService(exam.DefaultCatalog(), bankService, rdb, cfg, log)
	historyService := service.NewHistoryService(resultRepo, log)
	aiClient := ai.New(cfg, rdb, log)

	// ─── Prewarm Bank Pools ───────────────────────────────────────────
	// Load every imported bank into memory BEFORE accepting traffic so
	// the first paper sampled never pays the database round trip.
	for _, spec := range mockService.Specs() {
		if _, err := bankService.Pool(ctx, spec.CertType); err != nil {
			log.Warn().Err(err).Str("cert_type", spec.CertType).Msg("Bank prewarm failed")
		}
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, agentRepo),
		Bank:     handler.NewBankHandler(bankService),
		Practice: handler.NewPracticeHandler(practiceService),
		Mock:     handler.NewMockHandler(mockService),
		History:  handler.NewHistoryHandler(historyService),
		AI:       handler.NewAIHandler(aiClient, bankService, historyService),
		WS:       handler.NewWSHandler(mockService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	resultWorker := worker.NewResultWorker(pool, rdb, log)
	paperWorker := worker.NewPaperWorker(pool, rdb, log)

	go resultWorker.Start(workerCtx)
	go paperWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
