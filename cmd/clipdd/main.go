package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"clipd/internal/cliprecord"
	"clipd/internal/config"
	"clipd/internal/controller"
	"clipd/internal/daemon"
	"clipd/internal/executor"
	"clipd/internal/job"
	"clipd/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, configPath, exists, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !exists {
		configPath = ""
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := job.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}
	records, err := cliprecord.Open(cfg)
	if err != nil {
		_ = store.Close()
		logger.Error("open clip record store", logging.Error(err))
		return
	}

	launcher := executor.NewSubprocess(cfg, configPath, logger)
	ctrl := controller.New(cfg, store, records, launcher, logger)

	d, err := daemon.New(cfg, store, records, ctrl, logger)
	if err != nil {
		_ = store.Close()
		_ = records.Close()
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("clipdd shutting down")
}
