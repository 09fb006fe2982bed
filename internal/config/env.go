package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it;
// tests pass a map-backed function instead.
type LookupFunc func(key string) (string, bool)

// OSLookup reads the process environment.
func OSLookup(key string) (string, bool) { return os.LookupEnv(key) }

// MapLookup adapts a map to LookupFunc.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// envReader collects parse failures so every bad variable is reported at once.
type envReader struct {
	lookup LookupFunc
	errs   criterio.FieldErrorsBuilder
}

// get returns the first non-blank value among keys (aliases in priority order).
func (r *envReader) get(keys ...string) (string, string, bool) {
	for _, k := range keys {
		if v, ok := r.lookup(k); ok && strings.TrimSpace(v) != "" {
			return k, strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

func (r *envReader) str(dst *string, keys ...string) {
	if _, v, ok := r.get(keys...); ok {
		*dst = v
	}
}

func (r *envReader) list(dst *[]string, keys ...string) {
	if _, v, ok := r.get(keys...); ok {
		*dst = splitCSV(v)
	}
}

func (r *envReader) integer(dst *int, keys ...string) {
	k, v, ok := r.get(keys...)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = r.errs.Append(k, fmt.Errorf("invalid integer %q", v))
		return
	}
	*dst = n
}

func (r *envReader) int64(dst *int64, keys ...string) {
	k, v, ok := r.get(keys...)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.errs = r.errs.Append(k, fmt.Errorf("invalid integer %q", v))
		return
	}
	*dst = n
}

func (r *envReader) float(dst *float64, keys ...string) {
	k, v, ok := r.get(keys...)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = r.errs.Append(k, fmt.Errorf("invalid number %q", v))
		return
	}
	*dst = f
}

func (r *envReader) boolean(dst *bool, keys ...string) {
	if _, v, ok := r.get(keys...); ok {
		*dst = parseBool(v)
	}
}

// ApplyEnv overlays environment variables onto c. The SLACK_* report names
// are accepted alongside their destination-neutral aliases.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	r := &envReader{lookup: lookup}

	r.str(&c.Jira.BaseURL, "JIRA_BASE_URL")
	r.str(&c.Jira.Email, "JIRA_EMAIL", "JIRA_USERNAME")
	r.str(&c.Jira.APIToken, "JIRA_API_TOKEN")
	r.str(&c.Jira.PAT, "JIRA_PAT")
	r.str(&c.Jira.JQL, "JIRA_JQL")
	r.list(&c.Jira.Fields, "JIRA_FIELDS")
	r.integer(&c.Jira.PageSize, "JIRA_PAGE_SIZE", "JIRA_MAX_RESULTS")
	r.str(&c.Jira.APIVersion, "JIRA_API_VERSION")
	r.float(&c.Jira.RatePerSec, "JIRA_RATE_PER_SEC")
	r.integer(&c.Jira.Burst, "JIRA_BURST")
	r.str(&c.Jira.Timeout, "JIRA_TIMEOUT")

	r.str(&c.Delivery.Destination, "DESTINATION")
	r.float(&c.Delivery.RatePerSec, "DELIVERY_RATE_PER_SEC")
	r.str(&c.Delivery.Timeout, "DELIVERY_TIMEOUT")

	r.str(&c.Slack.Token, "SLACK_BOT_TOKEN")
	r.str(&c.Slack.Channel, "SLACK_CHANNEL_ID")
	r.str(&c.Slack.APIURL, "SLACK_API_URL")

	r.str(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	r.int64(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	r.integer(&c.Telegram.ThreadID, "TELEGRAM_THREAD_ID")
	r.str(&c.Telegram.APIURL, "TELEGRAM_API_URL")

	r.str(&c.Report.Title, "TITLE")
	r.str(&c.Report.Timezone, "TIMEZONE")
	r.str(&c.Report.DateFormat, "DATE_FORMAT")
	r.str(&c.Report.Style, "SLACK_MESSAGE_MODE", "REPORT_STYLE")
	r.boolean(&c.Report.SingleMessage, "SLACK_SINGLE_MESSAGE", "SINGLE_MESSAGE")
	r.integer(&c.Report.ChunkLimit, "SLACK_CHUNK_LIMIT", "CHUNK_LIMIT")
	r.str(&c.Report.GroupBy, "GROUP_BY")
	r.list(&c.Report.GroupOrder, "GROUP_ORDER")
	r.str(&c.Report.Unassigned, "GROUP_UNASSIGNED_LABEL")
	r.str(&c.Report.Other, "GROUP_OTHER_LABEL")
	r.list(&c.Report.DisplayFields, "DISPLAY_FIELDS")
	r.list(&c.Report.DateFields, "DATE_FIELDS")
	r.str(&c.Report.Placeholder, "PLACEHOLDER")

	r.str(&c.Schedule.Spec, "SCHEDULE")
	r.str(&c.Schedule.Timezone, "SCHEDULE_TIMEZONE")
	r.boolean(&c.Schedule.RunOnStart, "SCHEDULE_RUN_ON_START")

	r.str(&c.Logging.Level, "LOG_LEVEL")
	r.str(&c.Logging.Format, "LOG_FORMAT")
	r.str(&c.Logging.File, "LOG_FILE")

	return r.errs.ToError()
}

// parseBool: anything outside the truthy set is false.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
