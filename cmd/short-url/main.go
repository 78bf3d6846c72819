package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/short-url/internal/app"
	"github.com/vadimbarashkov/short-url/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("application stopped with error", "err", err)
		os.Exit(1)
	}
}

func newLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel:        slog.LevelDebug,
		Concise:         true,
		RequestHeaders:  true,
		TimeFieldFormat: "2006-01-02T15:04:05.000Z07:00",
		Tags: map[string]string{
			"env": env,
		},
	}

	if env == config.EnvProd {
		opts.JSON = true
		opts.LogLevel = slog.LevelInfo
		opts.Concise = false
	}

	return httplog.NewLogger("short-url", opts)
}
