package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/database"
	"github.com/lakshyaprep/lakshya-backend/internal/handler"
	"github.com/lakshyaprep/lakshya-backend/internal/logger"
	"github.com/lakshyaprep/lakshya-backend/internal/repository"
	"github.com/lakshyaprep/lakshya-backend/internal/router"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
	"github.com/lakshyaprep/lakshya-backend/internal/validator"
	"github.com/lakshyaprep/lakshya-backend/internal/worker"
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
		Msg("Starting Lakshya Backend")

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
	userRepo := repository.NewUserRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	paperRepo := repository.NewPaperRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, settingRepo, log)
	settingService := service.NewSettingService(settingRepo, log)
	questionService := service.NewQuestionService(questionRepo, rdb, log)
	tutorService := service.NewTutorService(cfg, questionRepo, rdb, log)
	progressService := service.NewProgressService(progressRepo, log)
	paperService := service.NewPaperService(questionRepo, paperRepo, attemptRepo, progressRepo, rdb, cfg.PaperCacheTTL, log)
	userService := service.NewUserService(cfg, userRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo)
	mediaService := service.NewMediaService(cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Paper:     handler.NewPaperHandler(paperService),
		Question:  handler.NewQuestionHandler(questionService),
		Progress:  handler.NewProgressHandler(progressService),
		Tutor:     handler.NewTutorHandler(tutorService, settingService),
		User:      handler.NewUserHandler(userService),
		Setting:   handler.NewSettingHandler(settingService),
		Dashboard: handler.NewDashboardHandler(dashboardService, progressService),
		Media:     handler.NewMediaHandler(mediaService),
		WS:        handler.NewWSHandler(tutorService, settingService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	if tutorService.Enabled() {
		solutionWorker := worker.NewSolutionWorker(questionRepo, tutorService, rdb, log)
		go solutionWorker.Start(workerCtx)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set; tutor endpoints and solution worker disabled")
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load recently generated papers into Redis BEFORE accepting traffic
	// so answer checks hit the fast lane from the first request.
	if err := paperService.PrewarmRecentPapers(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

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

	// 2. Stop the solution worker and let in-flight jobs finish.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
