package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jiradigest/internal/apperr"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JIRA_BASE_URL":    "https://acme.atlassian.net/",
		"JIRA_EMAIL":       "bot@acme.io",
		"JIRA_API_TOKEN":   "tok",
		"JIRA_JQL":         "project = OPS",
		"SLACK_BOT_TOKEN":  "xoxb-1",
		"SLACK_CHANNEL_ID": "C123",
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := Load("", MapLookup(baseEnv()))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://acme.atlassian.net", cfg.Jira.BaseURL)
	assert.Equal(t, DefaultFields, cfg.Jira.Fields)
	assert.Equal(t, "slack", cfg.Delivery.Destination)
	assert.Equal(t, DefaultSlackChunk, cfg.Report.ChunkLimit)
	assert.Equal(t, "list", cfg.Report.Style)
	assert.Equal(t, "Jira Report", cfg.Report.Title)
	assert.Equal(t, []string{"status", "assignee", "updated"}, cfg.Report.DisplayFields)
	assert.Equal(t, []string{"summary", "status", "assignee", "updated"}, cfg.RequestedFields())
}

func TestApplyEnvAliasesAndBools(t *testing.T) {
	env := baseEnv()
	env["REPORT_STYLE"] = "PLAIN"
	env["CHUNK_LIMIT"] = "1200"
	env["SLACK_SINGLE_MESSAGE"] = "Yes"
	env["JIRA_FIELDS"] = "key, summary, ,priority"
	env["GROUP_ORDER"] = "Done,To Do"

	cfg, err := Load("", MapLookup(env))
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.Report.Style)
	assert.Equal(t, 1200, cfg.Report.ChunkLimit)
	assert.True(t, cfg.Report.SingleMessage)
	assert.Equal(t, []string{"key", "summary", "priority"}, cfg.Jira.Fields)
	assert.Equal(t, []string{"Done", "To Do"}, cfg.Report.GroupOrder)

	for v, want := range map[string]bool{"1": true, "on": true, "y": true, "false": false, "nope": false} {
		assert.Equal(t, want, parseBool(v), v)
	}
}

func TestApplyEnvBadNumbers(t *testing.T) {
	env := baseEnv()
	env["JIRA_PAGE_SIZE"] = "lots"
	env["TELEGRAM_CHAT_ID"] = "chat"

	_, err := Load("", MapLookup(env))
	var ce *apperr.ConfigurationError
	require.ErrorAs(t, err, &ce)
	var fe criterio.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 2)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg, err := Load("", MapLookup(map[string]string{
		"JIRA_BASE_URL":      "ftp://x",
		"JIRA_API_VERSION":   "4",
		"SLACK_MESSAGE_MODE": "table",
		"SLACK_CHUNK_LIMIT":  "40000",
		"TIMEZONE":           "Mars/Olympus",
		"LOG_LEVEL":          "loud",
	}))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, apperr.ExitConfig, apperr.ExitCode(err))

	var fe criterio.FieldErrors
	require.ErrorAs(t, err, &fe)
	fields := map[string]bool{}
	for _, e := range fe {
		fields[e.Field] = true
	}
	for _, want := range []string{
		"jira.base_url", "jira.jql", "jira.auth", "jira.api_version",
		"report.style", "report.chunk_limit", "report.timezone", "logging.level",
		"slack.token", "slack.channel",
	} {
		assert.True(t, fields[want], "missing error for %s", want)
	}
}

func TestValidateDryRunSkipsDestination(t *testing.T) {
	env := baseEnv()
	delete(env, "SLACK_BOT_TOKEN")
	cfg, err := Load("", MapLookup(env))
	require.NoError(t, err)

	assert.Error(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateDryRun())
}

func TestValidateTelegram(t *testing.T) {
	env := baseEnv()
	env["DESTINATION"] = "Telegram"
	cfg, err := Load("", MapLookup(env))
	require.NoError(t, err)
	assert.Equal(t, DefaultTgChunk, cfg.Report.ChunkLimit)
	require.Error(t, cfg.Validate())

	env["TELEGRAM_BOT_TOKEN"] = "1:x"
	env["TELEGRAM_CHAT_ID"] = "-1001"
	cfg, err = Load("", MapLookup(env))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(-1001), cfg.Telegram.ChatID)
}

func TestPATAloneIsEnoughAuth(t *testing.T) {
	env := baseEnv()
	delete(env, "JIRA_EMAIL")
	delete(env, "JIRA_API_TOKEN")
	env["JIRA_PAT"] = "pat"
	cfg, err := Load("", MapLookup(env))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jiradigest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jira:
  base_url: https://file.example
  jql: project = FILE
  page_size: 50
report:
  title: From File
  group_order: [Done, Blocked]
  labels:
    customfield_10016: Points
`), 0o600))

	env := baseEnv()
	delete(env, "JIRA_JQL")
	env["TITLE"] = "From Env"
	cfg, err := Load(path, MapLookup(env))
	require.NoError(t, err)

	assert.Equal(t, "project = FILE", cfg.Jira.JQL)
	assert.Equal(t, 50, cfg.Jira.PageSize)
	assert.Equal(t, "https://acme.atlassian.net", cfg.Jira.BaseURL, "env overrides file")
	assert.Equal(t, "From Env", cfg.Report.Title)
	assert.Equal(t, "Points", cfg.Report.Labels["customfield_10016"])
}

func TestParseFileStrict(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"jira":{"jqll":"x"}}`), 0o600))
	_, err := ParseFile(unknown)
	assert.ErrorContains(t, err, "jqll")

	trailing := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(trailing, []byte(`{"jira":{}} {"jira":{}}`), 0o600))
	_, err = ParseFile(trailing)
	assert.ErrorContains(t, err, "trailing data")

	_, err = Load(filepath.Join(dir, "missing.json"), nil)
	var ce *apperr.ConfigurationError
	assert.ErrorAs(t, err, &ce)
}

func TestDurations(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultJiraTimeout, cfg.Jira.TimeoutDuration())
	assert.Equal(t, DefaultSendTimeout, cfg.Delivery.TimeoutDuration())

	cfg.Jira.Timeout = "90s"
	assert.Equal(t, 90*time.Second, cfg.Jira.TimeoutDuration())

	for _, raw := range []string{"-1s", "0s", "soon"} {
		_, err := jiraTimeoutField.parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestValidateRejectsBadTimeout(t *testing.T) {
	env := baseEnv()
	env["DELIVERY_TIMEOUT"] = "0"
	cfg, err := Load("", MapLookup(env))
	require.NoError(t, err)

	var fe criterio.FieldErrors
	require.ErrorAs(t, cfg.Validate(), &fe)
	require.Len(t, fe, 1)
	assert.Equal(t, "delivery.timeout", fe[0].Field)
	assert.Equal(t, DefaultSendTimeout, cfg.Delivery.TimeoutDuration())
}

func TestBlankTitleFallsBackToDefault(t *testing.T) {
	cfg := Config{Report: ReportConfig{Title: "   "}}
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultTitle, cfg.Report.Title)
}

func TestParseFileYAMLShape(t *testing.T) {
	dir := t.TempDir()

	list := filepath.Join(dir, "list.yaml")
	require.NoError(t, os.WriteFile(list, []byte("- jira\n- report\n"), 0o600))
	_, err := ParseFile(list)
	require.ErrorIs(t, err, errNotMapping)
	assert.ErrorContains(t, err, "list.yaml:1:")

	broken := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte("jira:\n  jql: [unclosed\n"), 0o600))
	_, err = ParseFile(broken)
	assert.ErrorContains(t, err, "broken.yml")
	assert.ErrorContains(t, err, "line")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err := ParseFile(empty)
	require.NoError(t, err)
	assert.Empty(t, cfg.Jira.JQL)

	numericKeys := filepath.Join(dir, "labels.yaml")
	require.NoError(t, os.WriteFile(numericKeys, []byte("report:\n  labels:\n    10016: Points\n"), 0o600))
	cfg, err = ParseFile(numericKeys)
	require.NoError(t, err)
	assert.Equal(t, "Points", cfg.Report.Labels["10016"])
}

func TestSummarizeChange(t *testing.T) {
	a, err := Load("", MapLookup(baseEnv()))
	require.NoError(t, err)
	b := *a
	b.Report.Title = "Other"
	b.Slack.Token = "xoxb-2"

	changed, attrs := SummarizeChange(a, &b)
	assert.Equal(t, []string{"slack", "report"}, changed)
	assert.NotEmpty(t, attrs)

	changed, _ = SummarizeChange(a, a)
	assert.Empty(t, changed)
}
