// The worker process consumes the notification email queue. It shares the
// database and redis with the API server but serves no HTTP traffic.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"leadmarket_backend/internal/email"
	"leadmarket_backend/internal/scheduler"
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/db"
	"leadmarket_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, pool, sender, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	log.Info("worker listening", "queue", cfg.AsynqQueueName)
	worker.Run(ctx)
	log.Info("worker stopped")
}
