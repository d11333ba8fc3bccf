package bot

import (
	"testing"

	"github.com/psds-microservice/support-bot/internal/errs"
	"github.com/psds-microservice/support-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplyCallback(t *testing.T) {
	id, err := parseReplyCallback("reply_42")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	id, err = parseReplyCallback("reply_0")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	for _, data := range []string{"reply_abc", "reply_", "reply_-1", "close_42", "", "42"} {
		_, err := parseReplyCallback(data)
		assert.ErrorIs(t, err, errs.ErrMalformedCallback, "data=%q", data)
	}
}

func TestParseCommand(t *testing.T) {
	cmd, ok := parseCommand("/start")
	require.True(t, ok)
	assert.Equal(t, "start", cmd)

	cmd, ok = parseCommand("/id@support_bot")
	require.True(t, ok)
	assert.Equal(t, "id", cmd)

	_, ok = parseCommand("hello")
	assert.False(t, ok)
	_, ok = parseCommand("/")
	assert.False(t, ok)
}

func TestRenderInquiryNotificationEmptyFields(t *testing.T) {
	ticket := &model.Ticket{ID: 3, UserID: 5}
	out := renderInquiryNotification(ticket, "")
	assert.Contains(t, out, "(@—)")
	assert.Contains(t, out, "<pre></pre>")
}
