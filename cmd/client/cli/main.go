package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/meetdeck/meetdeck-cli/internal/client/cli"
	"github.com/meetdeck/meetdeck-cli/internal/client/config"
	"github.com/meetdeck/meetdeck-cli/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.NewZerologLogger(os.Stderr, cfg.LogLevel, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
