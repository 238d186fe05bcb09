package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hookline/hookline/config"
	chihandlers "github.com/hookline/hookline/internal/http/chi"
	"github.com/hookline/hookline/metrics"
	"github.com/hookline/hookline/provider"
	queueredis "github.com/hookline/hookline/queue/redis"
	"github.com/hookline/hookline/webhook"
	"github.com/hookline/hookline/webhook/postgres"
)

const shutdownTimeout = 30 * time.Second

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

	collector := metrics.NewStoreCollector(repo, jobQueue)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		return err
	}
	defer exporter.Shutdown(context.Background())

	ingestService := webhook.NewService(providers, repo, jobQueue, logger)
	router := chihandlers.Handlers(ingestService, repo)

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      router,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)

	logger.Info("listening", "port", cfg.Port, "providers", providers.Names())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return <-errShutdown
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err := server.Shutdown(ctxTimeout); err != nil {
		errShutdown <- fmt.Errorf("forcing server close: %w", err)
		return
	}
	errShutdown <- nil
}
