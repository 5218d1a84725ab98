package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendwatch/internal/amqp"
	"spendwatch/internal/config"
	"spendwatch/internal/log"
	"spendwatch/internal/push"
	"spendwatch/internal/services"
	"spendwatch/internal/storage"
	"spendwatch/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.Setup(log.ServiceAlertWorker, log.LevelFromEnv())
	logger.Info("Starting alert worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sender, err := push.NewSender(cfg)
	if err != nil {
		logger.Error("Failed to initialize push sender", "error", err, "backend", cfg.PushBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	budgetSvc := services.NewBudgetService(repo, repo, repo)
	notificationSvc := services.NewNotificationService(repo, sender, cfg.NotificationLogLimit)
	monitorSvc := services.NewMonitorService(budgetSvc, notificationSvc, repo)
	alertWorker := worker.NewAlertWorker(monitorSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming budget check messages", "queue", cfg.AMQPQueue)
	err = amqpClient.ConsumeBudgetCheck(ctx, func(msg *amqp.BudgetCheckMessage) error {
		return alertWorker.HandleBudgetCheck(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Alert worker stopped gracefully")
}
