package store

import (
	"context"
	"sync"
	"time"

	"github.com/psds-microservice/support-bot/internal/errs"
	"github.com/psds-microservice/support-bot/internal/model"
)

// MemoryStore — реализация TicketStore в памяти для тестов и локальных проб.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   uint64
	tickets  map[uint64]*model.Ticket
	messages []model.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, tickets: make(map[uint64]*model.Ticket)}
}

func (s *MemoryStore) CreateTicket(ctx context.Context, userID int64, name, username string) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &model.Ticket{
		ID:           s.nextID,
		UserID:       userID,
		UserName:     name,
		UserUsername: username,
		Status:       model.TicketStatusOpen,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextID++
	s.tickets[t.ID] = t
	return copyTicket(t), nil
}

func (s *MemoryStore) GetTicket(ctx context.Context, id uint64) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, errs.ErrTicketNotFound
	}
	return copyTicket(t), nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	m := *msg
	m.ID = uint64(len(s.messages) + 1)
	s.messages = append(s.messages, m)
	return nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, id uint64, status model.TicketStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return errs.ErrTicketNotFound
	}
	t.Status = status
	return nil
}

func (s *MemoryStore) ListTickets(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []model.Ticket
	for _, t := range s.tickets {
		items = append(items, *t)
	}
	return items, int64(len(items)), nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, ticketID uint64) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []model.Message
	for _, m := range s.messages {
		if m.TicketID == ticketID {
			items = append(items, m)
		}
	}
	return items, nil
}

// Messages возвращает весь журнал (для проверок в тестах).
func (s *MemoryStore) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func copyTicket(t *model.Ticket) *model.Ticket {
	c := *t
	return &c
}
