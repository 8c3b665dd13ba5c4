// Standalone task worker. Runs the same handlers as the in-process
// worker of cmd/api; deploy it separately when queue volume outgrows
// the API process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/electrade/network-api/internal/config"
	"github.com/electrade/network-api/internal/database"
	"github.com/electrade/network-api/internal/logger"
	"github.com/electrade/network-api/internal/mail"
	"github.com/electrade/network-api/internal/repository"
	"github.com/electrade/network-api/internal/service"
	"github.com/electrade/network-api/internal/tasks"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Worker error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	queue := tasks.NewQueue(redisClient, cfg.Redis.QueueKey)

	networkRepo := repository.NewNetworkRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)

	mailer := mail.NewSMTPMailer(&cfg.Mail)
	networkService := service.NewNetworkService(networkRepo, productRepo, userRepo, queue, mailer, log)
	debtService := service.NewDebtService(networkRepo, queue, cfg.Debt.AsyncThreshold, nil, log)

	worker := tasks.NewWorker(queue, log)
	tasks.RegisterHandlers(worker, networkService, debtService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	worker.Run(ctx)
	log.Info("Worker stopped gracefully")
	return nil
}
