package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"clipd/internal/cliprecord"
	"clipd/internal/config"
	"clipd/internal/executor"
	"clipd/internal/logging"
	"clipd/internal/storage"
	"clipd/internal/worker"
)

// clipd-worker is the one-shot execution unit: it reads its assignment from
// the environment, extracts a single clip, and exits. Exit code zero means
// the clip was produced, uploaded, and recorded.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(os.Getenv(executor.EnvConfig))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	assignment, err := worker.AssignmentFromEnv()
	if err != nil {
		logger.Error("read assignment", logging.Error(err))
		os.Exit(2)
	}

	store, err := storage.NewMinIO(cfg, logger)
	if err != nil {
		logger.Error("connect object store", logging.Error(err))
		os.Exit(1)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Error("ensure bucket", logging.Error(err))
		os.Exit(1)
	}
	records, err := cliprecord.Open(cfg)
	if err != nil {
		logger.Error("open clip record store", logging.Error(err))
		os.Exit(1)
	}
	defer records.Close()

	w := worker.New(cfg, store, records, worker.NewFFmpeg(cfg.FFmpeg), logger)
	if err := w.Run(ctx, assignment); err != nil {
		os.Exit(1)
	}
}
