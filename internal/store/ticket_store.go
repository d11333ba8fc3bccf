package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/psds-microservice/support-bot/internal/errs"
	"github.com/psds-microservice/support-bot/internal/model"
	"gorm.io/gorm"
)

// TicketStore — интерфейс хранилища тикетов (Dependency Inversion, для
// подмены моком в тестах).
type TicketStore interface {
	// CreateTicket создаёт тикет со статусом open и снимком имени/username.
	CreateTicket(ctx context.Context, userID int64, name, username string) (*model.Ticket, error)
	GetTicket(ctx context.Context, id uint64) (*model.Ticket, error)
	// AppendMessage добавляет запись журнала, существующие записи не трогает.
	AppendMessage(ctx context.Context, msg *model.Message) error
	// SetStatus идемпотентен: повторная установка того же статуса — no-op.
	SetStatus(ctx context.Context, id uint64, status model.TicketStatus) error
	ListTickets(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error)
	ListMessages(ctx context.Context, ticketID uint64) ([]model.Message, error)
}

// GormStore реализует TicketStore поверх Postgres. Сериализацию конкурентных
// изменений одной строки обеспечивает движок БД.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateTicket(ctx context.Context, userID int64, name, username string) (*model.Ticket, error) {
	t := &model.Ticket{
		UserID:       userID,
		UserName:     name,
		UserUsername: username,
		Status:       model.TicketStatusOpen,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, storageErr("create ticket", err)
	}
	return t, nil
}

func (s *GormStore) GetTicket(ctx context.Context, id uint64) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, storageErr("get ticket", err)
	}
	return &t, nil
}

func (s *GormStore) AppendMessage(ctx context.Context, msg *model.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return storageErr("append message", err)
	}
	return nil
}

func (s *GormStore) SetStatus(ctx context.Context, id uint64, status model.TicketStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Ticket{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return storageErr("set status", res.Error)
	}
	if res.RowsAffected == 0 {
		// UPDATE по несуществующему id: отличаем от идемпотентного повтора.
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Ticket{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return storageErr("set status", err)
		}
		if count == 0 {
			return errs.ErrTicketNotFound
		}
	}
	return nil
}

func (s *GormStore) ListTickets(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error) {
	var items []model.Ticket
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.Ticket{})
	for k, v := range filter {
		tx = tx.Where(k, v)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, storageErr("count tickets", err)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, storageErr("list tickets", err)
	}
	return items, total, nil
}

func (s *GormStore) ListMessages(ctx context.Context, ticketID uint64) ([]model.Message, error) {
	var items []model.Message
	err := s.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, storageErr("list messages", err)
	}
	return items, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", errs.ErrStorageUnavailable, op, err)
}
