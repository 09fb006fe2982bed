package config

import (
	"strings"
	"time"

	"jiradigest/internal/delivery"
	"jiradigest/internal/record"
)

const (
	DefaultTitle        = "Jira Report"
	DefaultTimezone     = "UTC"
	DefaultDateFormat   = "%Y-%m-%d %H:%M"
	DefaultPageSize     = 100
	DefaultAPIVersion   = "3"
	DefaultJiraTimeout  = 30 * time.Second
	DefaultSendTimeout  = 45 * time.Second
	DefaultGroupBy      = "status"
	DefaultUnassigned   = "Unassigned"
	DefaultOther        = "Other"
	DefaultPlaceholder  = "—"
	DefaultSlackChunk   = 39000
	DefaultTgChunk      = 4000
	DefaultJiraRate     = 5
	DefaultDeliveryRate = 1
)

var (
	DefaultFields     = []string{"key", "summary", "status", "assignee", "updated"}
	DefaultDateFields = []string{"created", "updated", "resolutiondate", "duedate"}
)

// ApplyDefaults fills every unset knob. It never overrides explicit values.
func (c *Config) ApplyDefaults() {
	j := &c.Jira
	j.BaseURL = strings.TrimRight(strings.TrimSpace(j.BaseURL), "/")
	j.Fields = dedupFields(j.Fields)
	if len(j.Fields) == 0 {
		j.Fields = append([]string(nil), DefaultFields...)
	}
	if j.PageSize <= 0 {
		j.PageSize = DefaultPageSize
	}
	if strings.TrimSpace(j.APIVersion) == "" {
		j.APIVersion = DefaultAPIVersion
	}
	if j.RatePerSec <= 0 {
		j.RatePerSec = DefaultJiraRate
	}
	if j.Burst <= 0 {
		j.Burst = 1
	}

	d := &c.Delivery
	d.Destination = strings.ToLower(strings.TrimSpace(d.Destination))
	if d.Destination == "" {
		d.Destination = delivery.DestinationSlack
	}
	if d.RatePerSec <= 0 {
		d.RatePerSec = DefaultDeliveryRate
	}

	r := &c.Report
	if strings.TrimSpace(r.Title) == "" {
		r.Title = DefaultTitle
	}
	if strings.TrimSpace(r.Timezone) == "" {
		r.Timezone = DefaultTimezone
	}
	if r.DateFormat == "" {
		r.DateFormat = DefaultDateFormat
	}
	r.Style = strings.ToLower(strings.TrimSpace(r.Style))
	if r.Style == "" {
		r.Style = "list"
	}
	if r.ChunkLimit <= 0 {
		r.ChunkLimit = DefaultSlackChunk
		if d.Destination == delivery.DestinationTelegram {
			r.ChunkLimit = DefaultTgChunk
		}
	}
	if strings.TrimSpace(r.GroupBy) == "" {
		r.GroupBy = DefaultGroupBy
	}
	if r.Unassigned == "" {
		r.Unassigned = DefaultUnassigned
	}
	if r.Other == "" {
		r.Other = DefaultOther
	}
	if r.KeyField == "" {
		r.KeyField = "key"
	}
	if r.SummaryField == "" {
		r.SummaryField = "summary"
	}
	r.DisplayFields = dedupFields(r.DisplayFields)
	if len(r.DisplayFields) == 0 {
		for _, f := range j.Fields {
			if strings.EqualFold(f, r.KeyField) || strings.EqualFold(f, r.SummaryField) {
				continue
			}
			r.DisplayFields = append(r.DisplayFields, f)
		}
	}
	if r.DateFields == nil {
		r.DateFields = append([]string(nil), DefaultDateFields...)
	}
	if r.Placeholder == "" {
		r.Placeholder = DefaultPlaceholder
	}

	if strings.TrimSpace(c.Schedule.Timezone) == "" {
		c.Schedule.Timezone = r.Timezone
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// RequestedFields is the field list sent to the tracker: the configured
// fields plus anything the report needs, minus pseudo-fields the tracker
// returns on its own.
func (c Config) RequestedFields() []string {
	all := append([]string(nil), c.Jira.Fields...)
	all = append(all, c.Report.GroupBy, c.Report.SummaryField)
	all = append(all, c.Report.DisplayFields...)
	out := make([]string, 0, len(all))
	for _, f := range dedupFields(all) {
		if record.IsPseudoField(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (j JiraConfig) TimeoutDuration() time.Duration {
	return jiraTimeoutField.value(j.Timeout)
}

func (d DeliveryConfig) TimeoutDuration() time.Duration {
	return deliveryTimeoutField.value(d.Timeout)
}

// dedupFields trims, drops empties and removes case-insensitive duplicates,
// keeping the first spelling and order.
func dedupFields(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		k := strings.ToLower(f)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}
