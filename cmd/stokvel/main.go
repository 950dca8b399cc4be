package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"stokvel/internal/amqp"
	"stokvel/internal/cli"
	apphttp "stokvel/internal/http"
	"stokvel/internal/ledger"
	"stokvel/internal/ledger/memory"
	"stokvel/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	var (
		source ledger.GoalSource
		store  ledger.GoalStore
	)

	switch cfg.DataBackend {
	case "sqlite":
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		source, store = repo, repo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		mem, err := memory.NewFromFile(cfg.SeedFile)
		if err != nil {
			logger.Error("Failed to load goal seed", "error", err, "path", cfg.SeedFile)
			os.Exit(1)
		}
		source, store = mem, mem
		logger.Info("Initialized memory backend", "seed", cfg.SeedFile)
	}

	// AMQP is optional; without it contributions are still recorded and
	// the worker's pending sweep handles the export later.
	var publisher services.SyncPublisher
	if client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue); err != nil {
		logger.Warn("AMQP unavailable, contributions will rely on the pending export sweep", "error", err)
	} else {
		defer client.Close()
		publisher = client
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	contributions := services.NewContributionService(store, publisher, services.CompletionPolicy{})

	srv := apphttp.NewServer(":"+cfg.Port, source, contributions)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting stokvel server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped gracefully")
}
