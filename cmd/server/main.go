package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/config"
	"github.com/stemsi/quizgate/internal/corpus"
	"github.com/stemsi/quizgate/internal/database"
	"github.com/stemsi/quizgate/internal/handler"
	"github.com/stemsi/quizgate/internal/logger"
	"github.com/stemsi/quizgate/internal/middleware"
	"github.com/stemsi/quizgate/internal/repository"
	"github.com/stemsi/quizgate/internal/router"
	"github.com/stemsi/quizgate/internal/service"
	"github.com/stemsi/quizgate/internal/validator"
	"github.com/stemsi/quizgate/internal/worker"
)

// sessionSweepInterval is how often idle sessions are evicted.
const sessionSweepInterval = time.Minute

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Int("quiz_size", cfg.QuizSize).
		Int("pass_percent", cfg.PassPercent).
		Dur("session_ttl", cfg.SessionTTL).
		Bool("ledger", cfg.LedgerEnabled()).
		Msg("Starting quiz server")

	if cfg.RewardToken == "" {
		log.Warn().Str("placeholder", service.RewardPlaceholder).Msg("REWARD_TOKEN not set; passing submissions get the placeholder")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Question Bank ────────────────────────────────────────────
	bank, report, err := corpus.Load(cfg.QuestionBankPath, corpus.Options{Strict: cfg.StrictCorpus})
	report.Log(log.With().Str("component", "corpus").Logger())
	if err != nil {
		if !errors.Is(err, corpus.ErrCorpusUnavailable) {
			log.Fatal().Err(err).Str("path", cfg.QuestionBankPath).Msg("Failed to load question bank")
		}
		log.Warn().Err(err).Msg("Question bank unavailable; serving empty quizzes")
	}

	// ─── Optional Score Ledger (Redis queue → PostgreSQL) ──────────────
	var (
		publisher  service.ScorePublisher
		scoreQueue *worker.ScoreQueue
		scoring    *worker.ScoringWorker
	)
	if cfg.LedgerEnabled() {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		scoreQueue = worker.NewScoreQueue(rdb)
		publisher = scoreQueue
		scoring = worker.NewScoringWorker(scoreQueue, repository.NewResultRepository(pool), log)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	store := repository.NewSessionStore(cfg.SessionTTL, log)
	quizService := service.NewQuizService(
		bank,
		store,
		service.NewSampler(),
		service.NewGrader(cfg.PassPercent, cfg.RewardToken),
		cfg.QuizSize,
		publisher,
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	cookie := middleware.SessionCookie{
		Name:   config.CookieName.Session,
		MaxAge: cfg.CookieMaxAge,
		Secure: cfg.CookieSecure,
	}
	handlers := &router.Handlers{
		Quiz:   handler.NewQuizHandler(quizService, cookie, log),
		WS:     handler.NewWSHandler(quizService, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(quizService, scoreQueue, log),
	}
	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRatePerMinute, time.Minute)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		store.Run(workerCtx, sessionSweepInterval)
	}()
	go func() {
		defer wg.Done()
		submitLimiter.Run(workerCtx)
	}()
	if scoring != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scoring.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cookie, submitLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Int("questions", bank.Len()).Msg("Server listening")
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

	// 2. Stop background workers and wait for the score queue to drain.
	workerCancel()
	wg.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
