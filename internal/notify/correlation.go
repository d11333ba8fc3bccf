package notify

import "sync"

// CorrelationKey — (чат админа, id отправленного уведомления).
type CorrelationKey struct {
	ChatID    int64
	MessageID int64
}

// CorrelationTable связывает доставленное админу уведомление с тикетом.
// Таблица живёт в памяти процесса и восстановима из БД; ключ пишется ровно
// один раз при рассылке и никогда не перезаписывается.
type CorrelationTable struct {
	mu      sync.Mutex
	entries map[CorrelationKey]uint64
}

func NewCorrelationTable() *CorrelationTable {
	return &CorrelationTable{entries: make(map[CorrelationKey]uint64)}
}

// Record сохраняет связь уведомление → тикет. Возвращает false, если ключ
// уже занят (запись не перезаписывается).
func (c *CorrelationTable) Record(key CorrelationKey, ticketID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = ticketID
	return true
}

// Lookup возвращает тикет по ключу уведомления.
func (c *CorrelationTable) Lookup(key CorrelationKey) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[key]
	return id, ok
}
