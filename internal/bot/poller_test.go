package bot

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/psds-microservice/support-bot/internal/model"
	"github.com/psds-microservice/support-bot/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	batches [][]telegram.Update
	calls   atomic.Int64
	offsets []int64
}

func (f *fakeSource) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error) {
	n := f.calls.Add(1)
	f.offsets = append(f.offsets, offset)
	if int(n) <= len(f.batches) {
		return f.batches[n-1], nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPollerAdvancesOffset(t *testing.T) {
	e := newEnv(t)
	source := &fakeSource{batches: [][]telegram.Update{
		{userMessage("first")},
		{},
	}}
	p := NewPoller(source, e.router, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// Ждём, пока первый апдейт будет обработан.
	require.Eventually(t, func() bool {
		_, err := e.store.GetTicket(context.Background(), 1)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancel")
	}

	require.GreaterOrEqual(t, len(source.offsets), 2)
	assert.Equal(t, int64(0), source.offsets[0])
	assert.Equal(t, int64(2), source.offsets[1], "offset is last update_id + 1")
}

// Клик по кнопке и следующее сообщение того же админа приходят одной пачкой.
// Даже если подтверждение кнопки отвечает медленно, ответ админа обязан
// обработаться после выбора тикета, а не проскочить мимо пустой сессии.
func TestPollerSerializesSameAdminUpdates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.router.HandleUpdate(ctx, userMessage("Internet ishlamayapti"))
	e.transport.ackDelay = 50 * time.Millisecond

	cb := replyCallback(adminA1, "reply_1")
	cb.UpdateID = 10
	reply := adminMessage(adminA1, "Routerni qayta yoqing")
	reply.UpdateID = 11
	source := &fakeSource{batches: [][]telegram.Update{{cb, reply}, {}}}
	p := NewPoller(source, e.router, time.Second)

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(runCtx) }()

	require.Eventually(t, func() bool {
		tk, err := e.store.GetTicket(ctx, 1)
		return err == nil && tk.Status == model.TicketStatusAnswered
	}, 2*time.Second, 10*time.Millisecond, "admin reply must land after the selection, not before it")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancel")
	}

	var adminRows int
	for _, m := range e.store.Messages() {
		if m.FromAdmin {
			adminRows++
		}
	}
	assert.Equal(t, 1, adminRows)

	_, ok := e.sessions.Peek(adminA1)
	assert.False(t, ok, "session is consumed by the relayed reply")

	for _, m := range e.transport.sentTo(adminA1) {
		assert.NotContains(t, m.Text, "Reply tugmasini bosing", "reply must not be treated as session-less")
	}
}
