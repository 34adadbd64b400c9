package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/heartgame/internal/api"
	"github.com/vytor/heartgame/internal/auth"
	"github.com/vytor/heartgame/internal/clock"
	"github.com/vytor/heartgame/internal/config"
	"github.com/vytor/heartgame/internal/db"
	"github.com/vytor/heartgame/internal/jobs"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/repository/sqlite"
	"github.com/vytor/heartgame/internal/services"
	"github.com/vytor/heartgame/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("HeartGame Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("jwt_ttl=%v", cfg.JWTTTL)
	log.Debug("reconcile_interval=%v", cfg.ReconcileInterval)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("worker_queue_size=%d", cfg.WorkerQueueSize)

	// Open database
	database, err := db.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	log.Info("database opened: driver=%s", database.Driver())
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	clk := clock.New()
	scoreRepo := sqlite.NewScoreRepository(database)
	sessionRepo := sqlite.NewSessionRepository(database)
	userRepo := sqlite.NewUserRepository(database)
	statsRepo := sqlite.NewStatsRepository(database)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, clk)

	// Initialize services
	userService := services.NewUserService(userRepo, statsRepo, tokens, clk)

	// Initialize worker pool and reconcile schedule
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	queue := jobs.NewWorkerQueue(pool, userService, clk)

	srv := &api.Server{
		DB:             database,
		ScoreService:   services.NewScoreService(scoreRepo, clk),
		SessionService: services.NewSessionService(sessionRepo, clk),
		RankingService: services.NewRankingService(statsRepo, scoreRepo, userRepo, clk),
		UserService:    userService,
		Tokens:         tokens,
		Jobs:           queue,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	if err := queue.ScheduleReconcile(cfg.ReconcileInterval); err != nil {
		log.Warn("failed to schedule aggregate reconcile: %v", err)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping reconcile schedule")
	queue.Stop()

	// Shutdown HTTP server
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Cancel worker context and wait for workers to finish
	log.Debug("stopping worker pool")
	cancel()
	pool.Stop()

	log.Info("===========================================")
	log.Info("HeartGame Server Stopped")
	log.Info("===========================================")
}
