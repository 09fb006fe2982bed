// Package telegram delivers report chunks through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"jiradigest/internal/apperr"
	"jiradigest/internal/delivery"
)

type Config struct {
	Token    string
	ChatID   int64
	ThreadID int
	// APIURL overrides the Bot API base (tests).
	APIURL     string
	HTTPClient *http.Client
}

// Client sends HTML-formatted messages to one chat, optionally into a forum topic.
type Client struct {
	bot    *tele.Bot
	chat   *tele.Chat
	thread int
}

var _ delivery.Deliverer = (*Client)(nil)

// New builds an offline bot: no getMe call and no poller, only sends.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		Client:  hc,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	return &Client{bot: b, chat: &tele.Chat{ID: cfg.ChatID}, thread: cfg.ThreadID}, nil
}

func (c *Client) Name() string { return delivery.DestinationTelegram }
func (c *Client) Limit() int   { return delivery.TelegramHardLimit }

// Deliver sends text with HTML parse mode and link previews off. telebot
// calls are not context aware, so the call runs aside and ctx bounds the wait.
func (c *Client) Deliver(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return &apperr.TransportError{System: "telegram", Op: "sendMessage", Err: err}
	}
	opts := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
		ThreadID:              c.thread,
	}
	done := make(chan error, 1)
	go func() {
		_, err := c.bot.Send(c.chat, text, opts)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return classify(err)
		}
		return nil
	case <-ctx.Done():
		return &apperr.TransportError{System: "telegram", Op: "sendMessage", Err: ctx.Err()}
	}
}

func classify(err error) error {
	if errors.Is(err, tele.ErrTooLongMessage) || strings.Contains(strings.ToLower(err.Error()), "message is too long") {
		return fmt.Errorf("%w: %v", delivery.ErrTooLarge, err)
	}
	te := &apperr.TransportError{System: "telegram", Op: "sendMessage", Err: err}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		te.StatusCode = apiErr.Code
		te.Body = apiErr.Description
	}
	return te
}
