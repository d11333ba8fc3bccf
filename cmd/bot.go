package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/psds-microservice/support-bot/internal/application"
	"github.com/psds-microservice/support-bot/internal/config"
	"github.com/psds-microservice/support-bot/internal/logger"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the bot: Telegram long polling + operator HTTP API",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Setup(cfg.LogLevel, cfg.AppEnv)

	app, err := application.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}
