package session

import "sync"

// Tracker хранит для каждого админа тикет, выбранный кнопкой Reply.
// Состояние живёт только в памяти процесса: после рестарта админ выбирает
// тикет заново. На одного админа — не больше одного ожидающего тикета,
// повторный выбор перезаписывает предыдущий.
type Tracker struct {
	mu      sync.Mutex
	pending map[int64]uint64
}

func NewTracker() *Tracker {
	return &Tracker{pending: make(map[int64]uint64)}
}

// Select назначает (или перезаписывает) ожидающий тикет админа.
func (t *Tracker) Select(adminID int64, ticketID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[adminID] = ticketID
}

// Peek возвращает ожидающий тикет, не снимая выбор.
func (t *Tracker) Peek(adminID int64) (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.pending[adminID]
	return id, ok
}

// Consume атомарно читает и снимает выбор админа.
func (t *Tracker) Consume(adminID int64) (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.pending[adminID]
	if ok {
		delete(t.pending, adminID)
	}
	return id, ok
}
