package main

import (
	"context"
	"flag"
	"mbox/proj/internal/api/tasks"
	"mbox/proj/internal/config"
	"mbox/proj/internal/lib/logger"
	"mbox/proj/internal/services"
	"mbox/proj/internal/storage/postgres"
	"mbox/proj/internal/storage/postgres/models"
	"mbox/proj/internal/uploads"
	"os"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")
	flag.Parse()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DB.ConnectTimeout)
	storage, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
	if err != nil {
		cancel()
		log.Error("failed to connect to database", "errMsg", err.Error())
		os.Exit(1)
	}
	err = storage.Migrate(ctx)
	cancel()
	if err != nil {
		storage.Close()
		log.Error("failed to apply migrations", "errMsg", err.Error())
		os.Exit(1)
	}
	log.Info("database connection established")

	images, err := uploads.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix, cfg.Uploads.MaxSize)
	if err != nil {
		storage.Close()
		log.Error("failed to prepare uploads dir", "errMsg", err.Error())
		os.Exit(1)
	}
	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()

	app := NewApplication(cfg, log, services.New(log, cfg, models.New(storage), bgTasks, images), bgTasks)
	err = app.serve()
	storage.Close()
	if err != nil {
		log.Error("shutting down the server", "reason", err.Error())
		os.Exit(1)
	}
}
