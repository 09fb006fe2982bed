// Package slack delivers report chunks through the Slack Web API.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/slack-go/slack"

	"jiradigest/internal/apperr"
	"jiradigest/internal/delivery"
)

type Config struct {
	Token   string
	Channel string
	// APIURL overrides the Web API base; a trailing slash is added.
	APIURL     string
	HTTPClient *http.Client
}

// Client posts plain mrkdwn messages to one channel.
type Client struct {
	api     *slack.Client
	channel string
}

var _ delivery.Deliverer = (*Client)(nil)

func New(cfg Config) *Client {
	opts := []slack.Option{}
	if u := strings.TrimSpace(cfg.APIURL); u != "" {
		opts = append(opts, slack.OptionAPIURL(strings.TrimRight(u, "/")+"/"))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, slack.OptionHTTPClient(cfg.HTTPClient))
	}
	return &Client{api: slack.New(cfg.Token, opts...), channel: cfg.Channel}
}

func (c *Client) Name() string { return delivery.DestinationSlack }
func (c *Client) Limit() int   { return delivery.SlackHardLimit }

// Deliver posts text as is. Link and media unfurls are disabled so long
// reports stay compact.
func (c *Client) Deliver(ctx context.Context, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, c.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	)
	if err != nil {
		return classify(err)
	}
	return nil
}

// classify maps slack-go errors onto the shared taxonomy.
func classify(err error) error {
	var (
		apiErr  slack.SlackErrorResponse
		codeErr slack.StatusCodeError
		rateErr *slack.RateLimitedError
	)
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Err == "msg_too_long" {
			return fmt.Errorf("%w: %s", delivery.ErrTooLarge, apiErr.Err)
		}
		return &apperr.TransportError{System: "slack", Op: "chat.postMessage", StatusCode: http.StatusOK, Body: apiErr.Err, Err: err}
	case errors.As(err, &codeErr):
		if codeErr.Code == http.StatusRequestEntityTooLarge {
			return fmt.Errorf("%w: %s", delivery.ErrTooLarge, codeErr.Status)
		}
		return &apperr.TransportError{System: "slack", Op: "chat.postMessage", StatusCode: codeErr.Code, Err: err}
	case errors.As(err, &rateErr):
		return &apperr.TransportError{System: "slack", Op: "chat.postMessage", StatusCode: http.StatusTooManyRequests, Err: err}
	default:
		return &apperr.TransportError{System: "slack", Op: "chat.postMessage", Err: err}
	}
}
