package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotReq SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": map[string]interface{}{
				"message_id": 55,
				"chat":       map[string]interface{}{"id": gotReq.ChatID},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	msg, err := c.SendMessage(context.Background(), SendMessageRequest{ChatID: 10, Text: "hi", ParseMode: ParseModeHTML})
	require.NoError(t, err)
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, int64(10), gotReq.ChatID)
	assert.Equal(t, "hi", gotReq.Text)
	assert.Equal(t, int64(55), msg.MessageID)
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          false,
			"error_code":  403,
			"description": "Forbidden: bot was blocked by the user",
		})
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL))
	_, err := c.SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "blocked")
}

func TestGetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(7), payload["offset"])
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": []map[string]interface{}{
				{
					"update_id": 7,
					"message": map[string]interface{}{
						"message_id": 1,
						"from":       map[string]interface{}{"id": 5, "first_name": "A"},
						"chat":       map[string]interface{}{"id": 5, "type": "private"},
						"text":       "hello",
					},
				},
				{
					"update_id": 8,
					"callback_query": map[string]interface{}{
						"id":   "cb",
						"from": map[string]interface{}{"id": 9},
						"data": "reply_1",
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL))
	updates, err := c.GetUpdates(context.Background(), 7, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "hello", updates[0].Message.Text)
	assert.Equal(t, ChatTypePrivate, updates[0].Message.Chat.Type)
	require.NotNil(t, updates[1].CallbackQuery)
	assert.Equal(t, "reply_1", updates[1].CallbackQuery.Data)
}

func TestAnswerCallbackQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bott/answerCallbackQuery", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": true})
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL))
	require.NoError(t, c.AnswerCallbackQuery(context.Background(), "cb-9"))
}

func TestMessageContent(t *testing.T) {
	m := &Message{Text: "text"}
	assert.Equal(t, "text", m.Content())
	m = &Message{Caption: "caption"}
	assert.Equal(t, "caption", m.Content())
	m = &Message{}
	assert.Equal(t, "", m.Content())
}
