package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jiradigest/internal/apperr"
	"jiradigest/internal/delivery"
)

type captured struct {
	path   string
	params map[string]any
}

func fakeBotAPI(t *testing.T, reply string, got *captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got.params)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
}

func newClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Config{Token: "123:abc", ChatID: 42, APIURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func TestDeliverSendsHTML(t *testing.T) {
	var got captured
	srv := fakeBotAPI(t, `{"ok":true,"result":{"message_id":7,"date":1700000000,"chat":{"id":42,"type":"group"}}}`, &got)
	defer srv.Close()

	c := newClient(t, srv)
	require.NoError(t, c.Deliver(context.Background(), "<b>Report</b>"))

	assert.Equal(t, "/bot123:abc/sendMessage", got.path)
	assert.Equal(t, "42", fmt.Sprint(got.params["chat_id"]))
	assert.Equal(t, "<b>Report</b>", got.params["text"])
	assert.Equal(t, "HTML", got.params["parse_mode"])
	assert.Equal(t, delivery.TelegramHardLimit, c.Limit())
}

func TestDeliverTooLong(t *testing.T) {
	var got captured
	srv := fakeBotAPI(t, `{"ok":false,"error_code":400,"description":"Bad Request: message is too long"}`, &got)
	defer srv.Close()

	err := newClient(t, srv).Deliver(context.Background(), "x")
	assert.ErrorIs(t, err, delivery.ErrTooLarge)
}

func TestDeliverAPIError(t *testing.T) {
	var got captured
	srv := fakeBotAPI(t, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`, &got)
	defer srv.Close()

	err := newClient(t, srv).Deliver(context.Background(), "x")
	var te *apperr.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "telegram", te.System)
	assert.Equal(t, 400, te.StatusCode)
	assert.NotErrorIs(t, err, delivery.ErrTooLarge)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{ChatID: 1})
	assert.Error(t, err)
}
