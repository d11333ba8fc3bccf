package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/psds-microservice/support-bot/internal/config"
	"github.com/psds-microservice/support-bot/internal/database"
	"github.com/psds-microservice/support-bot/internal/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Setup(cfg.LogLevel, cfg.AppEnv)
	if cfg.DB.Host == "" || cfg.DB.Database == "" {
		return fmt.Errorf("config: DB_HOST and DB_DATABASE are required")
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("migrate up: ok")
	return nil
}
