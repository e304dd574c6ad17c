package main

import (
	"context"
	"log/slog"
	"mbox/proj/internal/config"
	"mbox/proj/internal/lib/decoder"
	"mbox/proj/internal/lib/validator"
	"mbox/proj/internal/services"

	govalidator "github.com/go-playground/validator/v10"
)

type backgroundTasks interface {
	Shutdown(ctx context.Context) error
}

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	services  *services.Services
	validator *govalidator.Validate
	decoder   *decoder.URLDecoder
	tasks     backgroundTasks
}

func NewApplication(cfg *config.Config, log *slog.Logger, services *services.Services, tasks backgroundTasks) *Application {
	return &Application{
		cfg:       cfg,
		log:       log,
		services:  services,
		validator: validator.New(),
		decoder:   decoder.New(),
		tasks:     tasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
