package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/psds-microservice/support-bot/internal/config"
	"github.com/psds-microservice/support-bot/internal/database"
	"github.com/psds-microservice/support-bot/internal/logger"
	"github.com/psds-microservice/support-bot/internal/searchindex"
	"github.com/psds-microservice/support-bot/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var reindexSearchCmd = &cobra.Command{
	Use:   "reindex-search",
	Short: "Reindex all tickets into search. Requires SEARCH_SERVICE_URL.",
	RunE:  runReindexSearch,
}

func runReindexSearch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Setup(cfg.LogLevel, cfg.AppEnv)
	if cfg.SearchServiceURL == "" {
		return fmt.Errorf("SEARCH_SERVICE_URL is not set")
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	ticketStore := store.NewGormStore(db)
	search := searchindex.NewClient(cfg.SearchServiceURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	tickets, total, err := ticketStore.ListTickets(ctx, nil, 0, 0)
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	for i := range tickets {
		t := &tickets[i]
		subject := ""
		// Первое сообщение обращения используется как subject для поиска.
		if msgs, err := ticketStore.ListMessages(ctx, t.ID); err == nil && len(msgs) > 0 {
			subject = msgs[0].Text
		}
		search.IndexTicket(ctx, t, subject)
	}
	log.Info().Int64("total", total).Msg("reindex-search: done")
	return nil
}
