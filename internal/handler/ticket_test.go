package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/support-bot/internal/model"
	"github.com/psds-microservice/support-bot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(s store.TicketStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTicketHandler(s)
	r := gin.New()
	r.GET("/api/v1/tickets", h.List)
	r.GET("/api/v1/tickets/:id", h.Get)
	r.GET("/api/v1/tickets/:id/messages", h.Messages)
	return r
}

func TestGetTicket(t *testing.T) {
	s := store.NewMemoryStore()
	tk, err := s.CreateTicket(context.Background(), 5, "Aziz", "aziz_u")
	require.NoError(t, err)
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, int64(5), got.UserID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTickets(t *testing.T) {
	s := store.NewMemoryStore()
	_, err := s.CreateTicket(context.Background(), 1, "A", "")
	require.NoError(t, err)
	_, err = s.CreateTicket(context.Background(), 2, "B", "")
	require.NoError(t, err)
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tickets []model.Ticket `json:"tickets"`
		Total   int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Tickets, 2)
}

func TestTicketMessages(t *testing.T) {
	s := store.NewMemoryStore()
	tk, err := s.CreateTicket(context.Background(), 1, "A", "")
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage(context.Background(), &model.Message{TicketID: tk.ID, Text: "hi"}))
	require.NoError(t, s.AppendMessage(context.Background(), &model.Message{TicketID: tk.ID, FromAdmin: true, Text: "hello"}))
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/1/messages", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.False(t, resp.Messages[0].FromAdmin)
	assert.True(t, resp.Messages[1].FromAdmin)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/99/messages", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
