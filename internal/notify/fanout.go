package notify

import (
	"context"

	"github.com/psds-microservice/support-bot/internal/telegram"
	"github.com/rs/zerolog/log"
)

// Sender — минимальный контракт транспорта, нужный рассылке.
type Sender interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
}

// Delivery — успешная доставка уведомления одному получателю.
type Delivery struct {
	ChatID    int64
	MessageID int64
}

// Fanout рассылает уведомление о новом тикете каждому получателю независимо:
// отказ одного адресата не прерывает рассылку остальным (best-effort).
// Для каждой успешной доставки пишется корреляционная запись.
type Fanout struct {
	sender Sender
	table  *CorrelationTable
}

func NewFanout(sender Sender, table *CorrelationTable) *Fanout {
	return &Fanout{sender: sender, table: table}
}

// Notify отправляет text с markup всем targets и возвращает успешные доставки.
func (f *Fanout) Notify(ctx context.Context, targets []int64, ticketID uint64, text string, markup *telegram.InlineKeyboardMarkup) []Delivery {
	var delivered []Delivery
	for _, chatID := range targets {
		msg, err := f.sender.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID:      chatID,
			Text:        text,
			ParseMode:   telegram.ParseModeHTML,
			ReplyMarkup: markup,
		})
		if err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Uint64("ticket_id", ticketID).
				Msg("fanout: delivery failed")
			continue
		}
		f.table.Record(CorrelationKey{ChatID: chatID, MessageID: msg.MessageID}, ticketID)
		delivered = append(delivered, Delivery{ChatID: chatID, MessageID: msg.MessageID})
	}
	return delivered
}
