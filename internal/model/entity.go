package model

import "time"

type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusAnswered TicketStatus = "answered"
)

// Ticket — одно обращение пользователя. Имя и username фиксируются на момент
// создания и дальше не синхронизируются с профилем (исторический снимок).
// Повторное сообщение пользователя всегда открывает новый тикет, статус
// reopened не существует.
type Ticket struct {
	ID           uint64       `gorm:"primaryKey" json:"id"`
	UserID       int64        `gorm:"index;not null" json:"user_id"`
	UserName     string       `gorm:"type:varchar(255)" json:"user_name"`
	UserUsername string       `gorm:"type:varchar(255)" json:"user_username"`
	Status       TicketStatus `gorm:"type:varchar(32);index;not null;default:open" json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Message — запись журнала переписки по тикету, только добавление.
// ChatID/MessageID — транспортные идентификаторы исходного сообщения
// (для аудита и отладки).
type Message struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	TicketID  uint64    `gorm:"index;not null" json:"ticket_id"`
	FromAdmin bool      `json:"from_admin"`
	ChatID    int64     `json:"chat_id"`
	MessageID int64     `json:"message_id"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
