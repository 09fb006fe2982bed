package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"jiradigest/internal/apperr"
	"jiradigest/internal/delivery"
	logx "jiradigest/pkg/logx"
)

// Validate checks a fully defaulted config for a run that delivers.
// All problems are reported together; the result is an *apperr.ConfigurationError
// wrapping criterio.FieldErrors.
func (c *Config) Validate() error { return c.validate(true) }

// ValidateDryRun is Validate without destination credentials, for preview.
func (c *Config) ValidateDryRun() error { return c.validate(false) }

func (c *Config) validate(withDelivery bool) error {
	errs := []error{
		c.validateJira(),
		c.validateReport(),
		c.validateLogging(),
		criterio.Run("schedule.timezone", c.Schedule.Timezone, validTimezone),
	}
	if withDelivery {
		errs = append(errs, c.validateDelivery())
	}
	return apperr.Config(criterio.ValidateStruct(errs...))
}

func (c *Config) validateJira() error {
	j := c.Jira
	var errs criterio.FieldErrorsBuilder
	if err := validBaseURL(j.BaseURL); err != nil {
		errs = errs.Append("jira.base_url", err)
	}
	if strings.TrimSpace(j.JQL) == "" {
		errs = errs.Append("jira.jql", fmt.Errorf("is required"))
	}
	if strings.TrimSpace(j.PAT) == "" && (strings.TrimSpace(j.Email) == "" || strings.TrimSpace(j.APIToken) == "") {
		errs = errs.Append("jira.auth", fmt.Errorf("set jira.pat, or both jira.email and jira.api_token"))
	}
	if j.APIVersion != "2" && j.APIVersion != "3" {
		errs = errs.Append("jira.api_version", fmt.Errorf("must be 2 or 3, got %q", j.APIVersion))
	}
	if j.PageSize <= 0 {
		errs = errs.Append("jira.page_size", fmt.Errorf("must be > 0"))
	}
	if _, err := jiraTimeoutField.parse(j.Timeout); err != nil {
		errs = errs.Append("jira.timeout", err)
	}
	return errs.ToError()
}

func (c *Config) validateDelivery() error {
	d := c.Delivery
	var errs criterio.FieldErrorsBuilder
	if _, err := deliveryTimeoutField.parse(d.Timeout); err != nil {
		errs = errs.Append("delivery.timeout", err)
	}
	switch d.Destination {
	case delivery.DestinationSlack:
		if strings.TrimSpace(c.Slack.Token) == "" {
			errs = errs.Append("slack.token", fmt.Errorf("is required"))
		}
		if strings.TrimSpace(c.Slack.Channel) == "" {
			errs = errs.Append("slack.channel", fmt.Errorf("is required"))
		}
	case delivery.DestinationTelegram:
		if strings.TrimSpace(c.Telegram.Token) == "" {
			errs = errs.Append("telegram.token", fmt.Errorf("is required"))
		}
		if c.Telegram.ChatID == 0 {
			errs = errs.Append("telegram.chat_id", fmt.Errorf("is required"))
		}
	default:
		errs = errs.Append("delivery.destination", fmt.Errorf("unknown destination %q", d.Destination))
	}
	return errs.ToError()
}

func (c *Config) validateReport() error {
	r := c.Report
	var errs criterio.FieldErrorsBuilder
	if r.Style != "list" && r.Style != "plain" {
		errs = errs.Append("report.style", fmt.Errorf("must be list or plain, got %q", r.Style))
	}
	if err := validTimezone(r.Timezone); err != nil {
		errs = errs.Append("report.timezone", err)
	}
	if limit := delivery.HardLimit(c.Delivery.Destination); limit > 0 && r.ChunkLimit >= limit {
		errs = errs.Append("report.chunk_limit", fmt.Errorf("must be below the %s hard limit of %d, got %d", c.Delivery.Destination, limit, r.ChunkLimit))
	}
	if r.ChunkLimit <= 0 {
		errs = errs.Append("report.chunk_limit", fmt.Errorf("must be > 0"))
	}
	return errs.ToError()
}

func (c *Config) validateLogging() error {
	var errs criterio.FieldErrorsBuilder
	if !logx.ValidLevel(c.Logging.Level) {
		errs = errs.Append("logging.level", fmt.Errorf("unknown level %q", c.Logging.Level))
	}
	if f := c.Logging.Format; f != "console" && f != "json" {
		errs = errs.Append("logging.format", fmt.Errorf("must be console or json, got %q", f))
	}
	return errs.ToError()
}

func validBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) url, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func validTimezone(name string) error {
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("unknown timezone %q", name)
	}
	return nil
}
