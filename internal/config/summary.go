package config

import (
	"reflect"
	"strings"

	logx "jiradigest/pkg/logx"
)

// SummarizeChange lists the config sections that differ and safe log
// attributes for them. Secrets are reported only as set/unset.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 7)
	attrs := make([]logx.Field, 0, 16)

	oj, nj := oldCfg.Jira, newCfg.Jira
	if oj.BaseURL != nj.BaseURL || oj.JQL != nj.JQL || oj.APIVersion != nj.APIVersion ||
		oj.PageSize != nj.PageSize || oj.RatePerSec != nj.RatePerSec || oj.Burst != nj.Burst ||
		oj.Timeout != nj.Timeout || oj.Email != nj.Email ||
		oj.APIToken != nj.APIToken || oj.PAT != nj.PAT ||
		!reflect.DeepEqual(oj.Fields, nj.Fields) {
		changed = append(changed, "jira")
		attrs = append(attrs,
			logx.String("jira.base_url", nj.BaseURL),
			logx.String("jira.api_version", nj.APIVersion),
			logx.Int("jira.page_size", nj.PageSize),
			logx.Bool("jira.pat_set", isSet(nj.PAT)),
		)
	}

	if oldCfg.Delivery != newCfg.Delivery {
		changed = append(changed, "delivery")
		attrs = append(attrs, logx.String("delivery.destination", newCfg.Delivery.Destination))
	}
	if oldCfg.Slack != newCfg.Slack {
		changed = append(changed, "slack")
		attrs = append(attrs,
			logx.String("slack.channel", newCfg.Slack.Channel),
			logx.Bool("slack.token_set", isSet(newCfg.Slack.Token)),
		)
	}
	if oldCfg.Telegram != newCfg.Telegram {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Int64("telegram.chat_id", newCfg.Telegram.ChatID),
			logx.Bool("telegram.token_set", isSet(newCfg.Telegram.Token)),
		)
	}
	if !reflect.DeepEqual(oldCfg.Report, newCfg.Report) {
		changed = append(changed, "report")
		attrs = append(attrs,
			logx.String("report.style", newCfg.Report.Style),
			logx.String("report.group_by", newCfg.Report.GroupBy),
			logx.Int("report.chunk_limit", newCfg.Report.ChunkLimit),
		)
	}
	if oldCfg.Schedule != newCfg.Schedule {
		changed = append(changed, "schedule")
		attrs = append(attrs, logx.String("schedule.spec", newCfg.Schedule.Spec))
	}
	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs, logx.String("logging.level", newCfg.Logging.Level))
	}
	return changed, attrs
}

func isSet(s string) bool { return strings.TrimSpace(s) != "" }
