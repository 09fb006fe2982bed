package pipeline

import (
	"fmt"

	"jiradigest/internal/apperr"
	"jiradigest/internal/config"
	"jiradigest/internal/delivery"
	"jiradigest/internal/delivery/slack"
	"jiradigest/internal/delivery/telegram"
	"jiradigest/internal/tracker/jira"
	logx "jiradigest/pkg/logx"
)

// NewFetcher builds the Jira client for cfg.
func NewFetcher(cfg config.Config, log logx.Logger) *jira.Client {
	return jira.NewClient(jira.Config{
		BaseURL:    cfg.Jira.BaseURL,
		PAT:        cfg.Jira.PAT,
		Email:      cfg.Jira.Email,
		APIToken:   cfg.Jira.APIToken,
		APIVersion: cfg.Jira.APIVersion,
		RatePerSec: cfg.Jira.RatePerSec,
		Burst:      cfg.Jira.Burst,
		Timeout:    cfg.Jira.TimeoutDuration(),
	}, log)
}

// NewDeliverer builds the client for cfg's destination.
func NewDeliverer(cfg config.Config) (delivery.Deliverer, error) {
	switch cfg.Delivery.Destination {
	case delivery.DestinationSlack:
		return slack.New(slack.Config{
			Token:   cfg.Slack.Token,
			Channel: cfg.Slack.Channel,
			APIURL:  cfg.Slack.APIURL,
		}), nil
	case delivery.DestinationTelegram:
		c, err := telegram.New(telegram.Config{
			Token:    cfg.Telegram.Token,
			ChatID:   cfg.Telegram.ChatID,
			ThreadID: cfg.Telegram.ThreadID,
			APIURL:   cfg.Telegram.APIURL,
		})
		if err != nil {
			return nil, apperr.Config(err)
		}
		return c, nil
	default:
		return nil, apperr.Config(fmt.Errorf("unknown destination %q", cfg.Delivery.Destination))
	}
}

// NewDeps wires a delivering run. dryRun leaves the Sender nil.
func NewDeps(cfg config.Config, log logx.Logger, dryRun bool) (Deps, error) {
	deps := Deps{Fetcher: NewFetcher(cfg, log), Log: log}
	if dryRun {
		return deps, nil
	}
	d, err := NewDeliverer(cfg)
	if err != nil {
		return Deps{}, err
	}
	deps.Sender = delivery.NewSender(d, delivery.SenderConfig{
		RatePerSec: cfg.Delivery.RatePerSec,
		Timeout:    cfg.Delivery.TimeoutDuration(),
	}, log)
	return deps, nil
}
