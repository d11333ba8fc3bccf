package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/psds-microservice/support-bot/internal/errs"
	"github.com/psds-microservice/support-bot/internal/kafka"
	"github.com/psds-microservice/support-bot/internal/model"
	"github.com/psds-microservice/support-bot/internal/notify"
	"github.com/psds-microservice/support-bot/internal/searchindex"
	"github.com/psds-microservice/support-bot/internal/session"
	"github.com/psds-microservice/support-bot/internal/store"
	"github.com/psds-microservice/support-bot/internal/telegram"
	"github.com/rs/zerolog/log"
)

// Transport — контракт транспорта, который нужен маршрутизатору.
type Transport interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Deps — зависимости маршрутизатора (D: зависимость от абстракций).
type Deps struct {
	Store     store.TicketStore
	Sessions  *session.Tracker
	Fanout    *notify.Fanout
	Transport Transport
	Producer  kafka.TicketEventProducer
	Search    *searchindex.Client
}

// Router классифицирует каждый входящий апдейт ровно в один из трёх путей
// (новое обращение, выбор тикета для ответа, ответ админа) и выполняет его.
// Каждый апдейт обрабатывается независимо; ошибка одного апдейта никогда не
// роняет обработку остальных.
type Router struct {
	Deps
	admins  map[int64]struct{}
	targets []int64
}

// NewRouter создаёт маршрутизатор. admins — allow-list админов, targets —
// полный набор получателей рассылки (админы ∪ админские чаты, без дублей).
func NewRouter(deps Deps, admins []int64, targets []int64) *Router {
	set := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		set[id] = struct{}{}
	}
	return &Router{Deps: deps, admins: set, targets: targets}
}

func (r *Router) isAdmin(userID int64) bool {
	_, ok := r.admins[userID]
	return ok
}

// HandleUpdate обрабатывает один апдейт до конца. Паника внутри обработчика
// гасится и логируется: один плохой апдейт не должен останавливать поллер.
func (r *Router) HandleUpdate(ctx context.Context, u telegram.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Int64("update_id", u.UpdateID).
				Msg("router: recovered from panic in update handler")
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		r.handleReplySelect(ctx, u.CallbackQuery)
	case u.Message != nil:
		r.handleMessage(ctx, u.Message)
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}
	if cmd, ok := parseCommand(msg.Text); ok {
		r.handleCommand(ctx, msg, cmd)
		return
	}
	// Порядок классификации важен: сначала обращение пользователя, потом
	// ответ админа.
	if !r.isAdmin(msg.From.ID) && msg.Chat.Type == telegram.ChatTypePrivate {
		r.handleNewInquiry(ctx, msg)
		return
	}
	if r.isAdmin(msg.From.ID) {
		r.handleAdminReply(ctx, msg)
		return
	}
	// Сообщения не-админов вне приватного чата тикетами не являются.
	log.Debug().Int64("chat_id", msg.Chat.ID).Msg("router: ignoring non-ticket message")
}

// handleNewInquiry — путь "новое обращение": тикет + запись журнала +
// рассылка + подтверждение пользователю.
func (r *Router) handleNewInquiry(ctx context.Context, msg *telegram.Message) {
	user := msg.From
	text := msg.Content() // пустая строка допустима (медиа без подписи)

	t, err := r.Store.CreateTicket(ctx, user.ID, user.FirstName, user.Username)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("router: create ticket")
		r.reply(ctx, msg.Chat.ID, textInternalError)
		return
	}
	if err := r.Store.AppendMessage(ctx, &model.Message{
		TicketID:  t.ID,
		FromAdmin: false,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      text,
	}); err != nil {
		log.Error().Err(err).Uint64("ticket_id", t.ID).Msg("router: append user message")
		r.reply(ctx, msg.Chat.ID, textInternalError)
		return
	}

	delivered := r.Fanout.Notify(ctx, r.targets, t.ID, renderInquiryNotification(t, text), replyButton(t.ID))
	log.Info().Uint64("ticket_id", t.ID).Int64("user_id", user.ID).
		Int("notified", len(delivered)).Msg("router: ticket created")

	r.reply(ctx, msg.Chat.ID, textInquiryForwarded)

	if r.Producer != nil {
		r.Producer.ProduceTicketEvent(ctx, kafka.EventTicketCreated, ticketEventPayload(t))
	}
	if r.Search != nil {
		r.Search.IndexTicketAsync(t, text)
	}
}

// handleReplySelect — путь "выбор тикета": кнопка всегда подтверждается
// (иначе у клиента зависают "часики"), даже если payload не разобрался.
func (r *Router) handleReplySelect(ctx context.Context, q *telegram.CallbackQuery) {
	ticketID, err := parseReplyCallback(q.Data)
	if err == nil {
		// Сессия выставляется до сетевых вызовов, чтобы ответ админа,
		// пришедший следом, гарантированно её застал. Новый выбор
		// перезаписывает предыдущий: последний клик побеждает.
		r.Sessions.Select(q.From.ID, ticketID)
	}

	if ackErr := r.Transport.AnswerCallbackQuery(ctx, q.ID); ackErr != nil {
		log.Warn().Err(ackErr).Str("callback_id", q.ID).Msg("router: answer callback")
	}

	if err != nil {
		log.Warn().Err(err).Int64("admin_id", q.From.ID).Msg("router: reply callback")
		return
	}

	chatID := q.From.ID
	if q.Message != nil {
		chatID = q.Message.Chat.ID
	}
	r.reply(ctx, chatID, renderReplyPrompt(ticketID))
}

// handleAdminReply — путь "ответ админа": доставка владельцу тикета, запись
// журнала, переход в answered, снятие сессии.
func (r *Router) handleAdminReply(ctx context.Context, msg *telegram.Message) {
	adminID := msg.From.ID
	ticketID, ok := r.Sessions.Peek(adminID)
	if !ok {
		r.reply(ctx, msg.Chat.ID, textNoSession)
		return
	}

	t, err := r.Store.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, errs.ErrTicketNotFound) {
			// Сессию сохраняем: админ может повторить после устранения
			// проблемы с данными.
			r.reply(ctx, msg.Chat.ID, textTicketNotFound)
			return
		}
		log.Error().Err(err).Uint64("ticket_id", ticketID).Msg("router: get ticket")
		r.reply(ctx, msg.Chat.ID, textInternalError)
		return
	}

	if _, err := r.Transport.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: t.UserID,
		Text:   renderAdminReply(t.ID, msg.Content()),
	}); err != nil {
		log.Error().Err(err).Uint64("ticket_id", t.ID).Msg("router: deliver admin reply")
		r.reply(ctx, msg.Chat.ID, textInternalError)
		return
	}

	// Ответ уже доставлен пользователю, откатить его нельзя: сессия
	// снимается в любом случае (повтор привёл бы к двойной отправке),
	// а отказ хранилища поверх доставки сообщается админу отдельно.
	storedOK := true
	if err := r.Store.AppendMessage(ctx, &model.Message{
		TicketID:  t.ID,
		FromAdmin: true,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Content(),
	}); err != nil {
		log.Error().Err(err).Uint64("ticket_id", t.ID).Msg("router: append admin message")
		storedOK = false
	}
	if err := r.Store.SetStatus(ctx, t.ID, model.TicketStatusAnswered); err != nil {
		log.Error().Err(err).Uint64("ticket_id", t.ID).Msg("router: set status answered")
		storedOK = false
	}

	r.Sessions.Consume(adminID)
	if storedOK {
		r.reply(ctx, msg.Chat.ID, renderReplySent(t.ID))
	} else {
		r.reply(ctx, msg.Chat.ID, renderReplySentStoreFailed(t.ID))
	}
	log.Info().Uint64("ticket_id", t.ID).Int64("admin_id", adminID).Msg("router: ticket answered")

	if r.Producer != nil {
		t.Status = model.TicketStatusAnswered
		r.Producer.ProduceTicketEvent(ctx, kafka.EventTicketAnswered, ticketEventPayload(t))
	}
	if r.Search != nil {
		t.Status = model.TicketStatusAnswered
		r.Search.IndexTicketAsync(t, "")
	}
}

func (r *Router) handleCommand(ctx context.Context, msg *telegram.Message, cmd string) {
	switch cmd {
	case "start":
		r.reply(ctx, msg.Chat.ID, textStart)
	case "id":
		r.reply(ctx, msg.Chat.ID, renderIDReply(msg.From.ID, msg.Chat.ID))
	default:
		// Неизвестные команды не маршрутизируются как тикеты.
		log.Debug().Str("command", cmd).Msg("router: unknown command")
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) {
	if _, err := r.Transport.SendMessage(ctx, telegram.SendMessageRequest{ChatID: chatID, Text: text}); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("router: send reply")
	}
}

// parseCommand выделяет имя команды из "/cmd" или "/cmd@botname".
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0][1:]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	if cmd == "" {
		return "", false
	}
	return cmd, true
}

func ticketEventPayload(t *model.Ticket) map[string]interface{} {
	return map[string]interface{}{
		"ticket_id":     int64(t.ID),
		"user_id":       t.UserID,
		"user_name":     t.UserName,
		"user_username": t.UserUsername,
		"status":        string(t.Status),
	}
}
