package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

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

	logger := log.Setup(log.ServiceSweepWorker, log.LevelFromEnv())
	logger.Info("Starting sweep worker")

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

	budgetSvc := services.NewBudgetService(repo, repo, repo)
	notificationSvc := services.NewNotificationService(repo, sender, cfg.NotificationLogLimit)
	monitorSvc := services.NewMonitorService(budgetSvc, notificationSvc, repo)
	sweepWorker := worker.NewSweepWorker(monitorSvc, cfg.SweepInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sweepWorker.Run(ctx)
	})

	// Minimal liveness endpoint so orchestrators can probe the worker.
	g.Go(func() error {
		return runHealthServer(ctx, monitorSvc)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Sweep worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Sweep worker stopped gracefully")
}

func runHealthServer(ctx context.Context, monitor *services.MonitorService) error {
	port := os.Getenv("HEALTH_PORT")
	if port == "" {
		port = "8083"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if last := monitor.LastSweep(); !last.IsZero() {
			w.Write([]byte(`{"status":"ok","last_sweep":"` + last.UTC().Format(time.RFC3339) + `"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}
