package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendwatch/internal/amqp"
	"spendwatch/internal/config"
	apphttp "spendwatch/internal/http"
	"spendwatch/internal/log"
	"spendwatch/internal/push"
	"spendwatch/internal/services"
	"spendwatch/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.Setup(log.ServiceAPI, log.LevelFromEnv())

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

	// Budget checks are published best-effort; the API stays up even if
	// the broker is unreachable at boot.
	var publisher services.BudgetCheckPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, budget checks will only run on sweep", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	sender, err := push.NewSender(cfg)
	if err != nil {
		logger.Error("Failed to initialize push sender", "error", err, "backend", cfg.PushBackend)
		os.Exit(1)
	}

	expenseSvc := services.NewExpenseService(repo, repo, publisher)
	categorySvc := services.NewCategoryService(repo)
	budgetSvc := services.NewBudgetService(repo, repo, repo)
	notificationSvc := services.NewNotificationService(repo, sender, cfg.NotificationLogLimit)
	monitorSvc := services.NewMonitorService(budgetSvc, notificationSvc, repo)
	analyticsSvc := services.NewAnalyticsService(repo)

	srv := apphttp.NewServer(cfg.Port, apphttp.Deps{
		Expenses:      expenseSvc,
		Categories:    categorySvc,
		Budgets:       budgetSvc,
		Notifications: notificationSvc,
		Monitor:       monitorSvc,
		Analytics:     analyticsSvc,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting spendwatch server", "port", cfg.Port, "push_backend", cfg.PushBackend)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
