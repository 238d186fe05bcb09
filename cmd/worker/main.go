package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hookline/hookline/config"
	"github.com/hookline/hookline/handler"
	"github.com/hookline/hookline/provider"
	queueredis "github.com/hookline/hookline/queue/redis"
	"github.com/hookline/hookline/webhook"
	"github.com/hookline/hookline/webhook/postgres"
	"github.com/hookline/hookline/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	providers, err := provider.Load(cfg.ProvidersFile)
	if err != nil {
		return err
	}

	repo, err := postgres.NewRepository(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	jobQueue, err := queueredis.NewQueue(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer jobQueue.Close()

	handlers := handler.NewRegistry()
	registerHandlers(handlers, providers, logger)

	processor := worker.NewProcessor(repo, handlers, providers, jobQueue, logger)
	runner := worker.NewRunner(jobQueue, processor, cfg.WorkerConcurrency, logger)

	logger.Info("worker starting", "concurrency", cfg.WorkerConcurrency, "providers", providers.Names())
	runner.Run(ctx)
	return nil
}

/* registerHandlers is where deployments bind their application logic.
 * The wildcard log handler below keeps every configured provider drained in
 * environments that have not registered real handlers yet.
 */
func registerHandlers(handlers *handler.Registry, providers *provider.Registry, logger *slog.Logger) {
	for _, name := range providers.Names() {
		handlers.MustRegister(name, handler.Wildcard, logHandler(logger))
	}
}

func logHandler(logger *slog.Logger) handler.Handler {
	return handler.Func(func(ctx context.Context, wh webhook.Webhook) error {
		logger.InfoContext(ctx, "received webhook",
			"provider", wh.Provider,
			"event_type", wh.EventType,
			"webhook_id", wh.ID,
			"payload_bytes", len(wh.Payload),
		)
		return nil
	})
}
