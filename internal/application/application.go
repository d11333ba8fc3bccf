package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/psds-microservice/support-bot/internal/bot"
	"github.com/psds-microservice/support-bot/internal/config"
	"github.com/psds-microservice/support-bot/internal/database"
	"github.com/psds-microservice/support-bot/internal/handler"
	"github.com/psds-microservice/support-bot/internal/kafka"
	"github.com/psds-microservice/support-bot/internal/notify"
	"github.com/psds-microservice/support-bot/internal/router"
	"github.com/psds-microservice/support-bot/internal/searchindex"
	"github.com/psds-microservice/support-bot/internal/session"
	"github.com/psds-microservice/support-bot/internal/store"
	"github.com/psds-microservice/support-bot/internal/telegram"
	"github.com/rs/zerolog/log"
)

// App — собранное приложение: поллер Telegram + операторский HTTP API.
type App struct {
	cfg      *config.Config
	httpSrv  *http.Server
	poller   *bot.Poller
	producer *kafka.Producer
}

// New валидирует конфиг, прогоняет миграции и связывает все компоненты.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	ticketStore := store.NewGormStore(db)
	sessions := session.NewTracker()
	correlation := notify.NewCorrelationTable()
	client := telegram.NewClient(cfg.BotToken)
	fanout := notify.NewFanout(client, correlation)
	producer := kafka.NewProducer(kafka.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic)
	search := searchindex.NewClient(cfg.SearchServiceURL)

	ticketRouter := bot.NewRouter(bot.Deps{
		Store:     ticketStore,
		Sessions:  sessions,
		Fanout:    fanout,
		Transport: client,
		Producer:  producer,
		Search:    search,
	}, cfg.AdminIDs, cfg.NotifyTargets())
	poller := bot.NewPoller(client, ticketRouter, cfg.PollTimeout)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(handler.NewTicketHandler(ticketStore)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:      cfg,
		httpSrv:  httpSrv,
		poller:   poller,
		producer: producer,
	}, nil
}

// Run запускает HTTP сервер и поллер, блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	log.Info().Str("addr", a.httpSrv.Addr).Msg("http server listening")
	log.Info().Int("admins", len(a.cfg.AdminIDs)).Msg("bot started")

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server")
		}
	}()

	pollErr := make(chan error, 1)
	go func() {
		pollErr <- a.poller.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-pollErr:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("poller: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		log.Warn().Err(err).Msg("kafka producer close")
	}
	return nil
}
