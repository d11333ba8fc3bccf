package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/psds-microservice/support-bot/internal/model"
	"github.com/rs/zerolog/log"
)

// Client отправляет тикеты в search-service для индексации (best-effort,
// не блокирует обработку апдейтов).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient возвращает клиент. Если baseURL пустой, вызовы IndexTicket — no-op.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// IndexTicketPayload — тело POST /search/index/ticket.
type IndexTicketPayload struct {
	TicketID     int64  `json:"ticket_id"`
	UserID       int64  `json:"user_id"`
	UserName     string `json:"user_name"`
	UserUsername string `json:"user_username"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
}

// IndexTicket отправляет тикет в search-service. subject — текст первого
// сообщения обращения. Вызывать в goroutine после создания/изменения.
func (c *Client) IndexTicket(ctx context.Context, t *model.Ticket, subject string) {
	if c.baseURL == "" {
		return
	}
	payload := IndexTicketPayload{
		TicketID:     int64(t.ID),
		UserID:       t.UserID,
		UserName:     t.UserName,
		UserUsername: t.UserUsername,
		Subject:      subject,
		Status:       string(t.Status),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Msg("searchindex: marshal")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search/index/ticket", bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("searchindex: new request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("searchindex: request")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Uint64("ticket_id", t.ID).Msg("searchindex: unexpected status")
	}
}

// IndexTicketAsync вызывает IndexTicket в отдельной горутине (не блокирует
// обработку апдейта).
func (c *Client) IndexTicketAsync(t *model.Ticket, subject string) {
	if c.baseURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.IndexTicket(ctx, t, subject)
	}()
}
