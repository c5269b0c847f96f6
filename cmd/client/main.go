package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lingopal/lingopal-client/internal/client/cli"
	"github.com/lingopal/lingopal-client/internal/client/config"
	"github.com/lingopal/lingopal-client/internal/logging"
)

func main() {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to start client", "err", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
