package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/psds-microservice/support-bot/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	fail      map[int64]bool
	nextMsgID int64
	sent      []telegram.SendMessageRequest
}

func (f *fakeSender) SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error) {
	if f.fail[req.ChatID] {
		return nil, errors.New("chat unreachable")
	}
	f.nextMsgID++
	f.sent = append(f.sent, req)
	return &telegram.Message{MessageID: f.nextMsgID, Chat: telegram.Chat{ID: req.ChatID}}, nil
}

func TestNotifyRecordsCorrelation(t *testing.T) {
	sender := &fakeSender{}
	table := NewCorrelationTable()
	f := NewFanout(sender, table)

	delivered := f.Notify(context.Background(), []int64{10, 20}, 5, "ticket #5", nil)
	require.Len(t, delivered, 2)

	for _, d := range delivered {
		id, ok := table.Lookup(CorrelationKey{ChatID: d.ChatID, MessageID: d.MessageID})
		require.True(t, ok)
		assert.Equal(t, uint64(5), id)
	}
}

func TestNotifyPartialFailure(t *testing.T) {
	sender := &fakeSender{fail: map[int64]bool{20: true}}
	table := NewCorrelationTable()
	f := NewFanout(sender, table)

	delivered := f.Notify(context.Background(), []int64{10, 20, 30}, 1, "text", nil)

	require.Len(t, delivered, 2, "failure to one target must not stop the batch")
	assert.Equal(t, int64(10), delivered[0].ChatID)
	assert.Equal(t, int64(30), delivered[1].ChatID)
}

func TestCorrelationWriteOnce(t *testing.T) {
	table := NewCorrelationTable()
	key := CorrelationKey{ChatID: 1, MessageID: 100}

	require.True(t, table.Record(key, 1))
	assert.False(t, table.Record(key, 2), "existing entry must not be overwritten")

	id, ok := table.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, uint64(1), id)
}
