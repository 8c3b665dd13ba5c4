package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/electrade/network-api/docs"
	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/config"
	"github.com/electrade/network-api/internal/database"
	"github.com/electrade/network-api/internal/http/handler"
	"github.com/electrade/network-api/internal/http/middleware"
	"github.com/electrade/network-api/internal/http/router"
	"github.com/electrade/network-api/internal/jobs"
	"github.com/electrade/network-api/internal/logger"
	"github.com/electrade/network-api/internal/mail"
	"github.com/electrade/network-api/internal/repository"
	"github.com/electrade/network-api/internal/service"
	"github.com/electrade/network-api/internal/tasks"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title Trade Network API
// @version 1.0
// @description Supply-chain hierarchy platform: trade networks, products, users, debt management

// @contact.name API Support
// @contact.email support@electrade.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connect to redis for the task queue
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	queue := tasks.NewQueue(redisClient, cfg.Redis.QueueKey)

	// Initialize repositories
	networkRepo := repository.NewNetworkRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	mailer := mail.NewSMTPMailer(&cfg.Mail)
	tokens := auth.NewTokenManager(&cfg.Auth, cfg.App.Name)
	networkService := service.NewNetworkService(networkRepo, productRepo, userRepo, queue, mailer, log)
	productService := service.NewProductService(productRepo, log)
	userService := service.NewUserService(userRepo, tokens, log)
	debtService := service.NewDebtService(networkRepo, queue, cfg.Debt.AsyncThreshold, nil, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(tokens, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, log)
	networkHandler := handler.NewNetworkHandler(networkService, debtService, log)
	productHandler := handler.NewProductHandler(productService, log)
	userHandler := handler.NewUserHandler(userService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		networkHandler,
		productHandler,
		userHandler,
	)

	// Start the in-process task worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	worker := tasks.NewWorker(queue, log)
	tasks.RegisterHandlers(worker, networkService, debtService)
	go worker.Run(workerCtx)

	// Initialize and start scheduler for the debt jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		increaseJob := jobs.NewIncreaseDebtJob(debtService, log, jobs.DefaultJobTimeout)
		if err := scheduler.AddJob(jobs.IncreaseDebtJobName, cfg.Jobs.IncreaseDebtCron, increaseJob.Run); err != nil {
			return fmt.Errorf("failed to register increase debt job: %w", err)
		}
		decreaseJob := jobs.NewDecreaseDebtJob(debtService, log, jobs.DefaultJobTimeout)
		if err := scheduler.AddJob(jobs.DecreaseDebtJobName, cfg.Jobs.DecreaseDebtCron, decreaseJob.Run); err != nil {
			return fmt.Errorf("failed to register decrease debt job: %w", err)
		}

		scheduler.Start()
	} else {
		log.Info("Scheduled debt jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Stop the task worker
		workerCancel()

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if err := redisClient.Close(); err != nil {
			log.Warn("Error closing redis connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
