package bot

import (
	"context"
	"sync"
	"time"

	"github.com/psds-microservice/support-bot/internal/telegram"
	"github.com/rs/zerolog/log"
)

// UpdateSource — источник апдейтов (long polling getUpdates).
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

// Poller читает апдейты и передаёт их в Router. Апдейты разных отправителей
// обрабатываются параллельно и никак не упорядочены между собой, но апдейты
// одного отправителя выполняются строго последовательно: выбор тикета кнопкой
// и следующее сообщение того же админа не должны переставляться местами.
type Poller struct {
	source  UpdateSource
	router  *Router
	timeout time.Duration

	mu    sync.Mutex
	lanes map[int64]*lane
}

// lane — очередь апдейтов одного отправителя, разбираемая одной горутиной.
type lane struct {
	queue []telegram.Update
}

func NewPoller(source UpdateSource, router *Router, timeout time.Duration) *Poller {
	return &Poller{source: source, router: router, timeout: timeout, lanes: make(map[int64]*lane)}
}

// Run блокируется до отмены ctx.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("poller: get updates")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			p.dispatch(ctx, u)
		}
	}
}

// dispatch ставит апдейт в очередь его отправителя; для первого апдейта
// очереди запускается горутина-разборщик. Апдейты без отправителя
// обрабатываются независимо.
func (p *Poller) dispatch(ctx context.Context, u telegram.Update) {
	key, ok := senderKey(u)
	if !ok {
		go p.router.HandleUpdate(ctx, u)
		return
	}
	p.mu.Lock()
	if l, exists := p.lanes[key]; exists {
		l.queue = append(l.queue, u)
		p.mu.Unlock()
		return
	}
	l := &lane{queue: []telegram.Update{u}}
	p.lanes[key] = l
	p.mu.Unlock()
	go p.drain(ctx, key, l)
}

func (p *Poller) drain(ctx context.Context, key int64, l *lane) {
	for {
		p.mu.Lock()
		if len(l.queue) == 0 {
			delete(p.lanes, key)
			p.mu.Unlock()
			return
		}
		u := l.queue[0]
		l.queue = l.queue[1:]
		p.mu.Unlock()
		p.router.HandleUpdate(ctx, u)
	}
}

func senderKey(u telegram.Update) (int64, bool) {
	switch {
	case u.CallbackQuery != nil:
		return u.CallbackQuery.From.ID, true
	case u.Message != nil && u.Message.From != nil:
		return u.Message.From.ID, true
	}
	return 0, false
}
