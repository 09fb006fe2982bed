package config

// Config is the immutable run configuration. It is built once at process start
// (file, then environment, then defaults) and passed by value into each stage.
//
// Durations are Go duration strings (e.g. "500ms", "30s") so the file format
// stays readable; use the accessor methods to read them.
type Config struct {
	Jira     JiraConfig     `json:"jira"`
	Delivery DeliveryConfig `json:"delivery"`
	Slack    SlackConfig    `json:"slack"`
	Telegram TelegramConfig `json:"telegram"`
	Report   ReportConfig   `json:"report"`
	Schedule ScheduleConfig `json:"schedule"`
	Logging  LoggingConfig  `json:"logging"`
}

// JiraConfig describes the tracker query.
//
// Auth: a personal access token (PAT) is sent as a bearer token and wins over
// email + API token (basic auth).
type JiraConfig struct {
	BaseURL  string `json:"base_url"`
	Email    string `json:"email"`
	APIToken string `json:"api_token"`
	PAT      string `json:"pat,omitempty"`

	JQL      string   `json:"jql"`
	Fields   []string `json:"fields"`
	PageSize int      `json:"page_size"`

	// APIVersion selects the paging protocol: "3" (continuation token,
	// /rest/api/3/search/jql) or "2" (offset, /rest/api/2/search).
	APIVersion string `json:"api_version"`

	// Token bucket for page requests.
	RatePerSec float64 `json:"rate_per_sec"`
	Burst      int     `json:"burst"`

	Timeout string `json:"timeout"`
}

// DeliveryConfig selects and paces the chat destination.
type DeliveryConfig struct {
	Destination string  `json:"destination"` // "slack" | "telegram"
	RatePerSec  float64 `json:"rate_per_sec"`
	Timeout     string  `json:"timeout"`
}

type SlackConfig struct {
	Token   string `json:"token"`
	Channel string `json:"channel"`
	// APIURL overrides the Web API base (must end with "/"). Tests only.
	APIURL string `json:"api_url,omitempty"`
}

type TelegramConfig struct {
	Token    string `json:"token"`
	ChatID   int64  `json:"chat_id"`
	ThreadID int    `json:"thread_id,omitempty"`
	APIURL   string `json:"api_url,omitempty"`
}

// ReportConfig shapes the rendered report.
type ReportConfig struct {
	Title      string `json:"title"`
	Timezone   string `json:"timezone"`
	DateFormat string `json:"date_format"` // strftime pattern
	Style      string `json:"style"`       // "list" | "plain"

	// SingleMessage prefers one message; the report is still split when it
	// does not fit under ChunkLimit.
	SingleMessage bool `json:"single_message"`
	ChunkLimit    int  `json:"chunk_limit"`

	GroupBy    string   `json:"group_by"`
	GroupOrder []string `json:"group_order,omitempty"`
	Unassigned string   `json:"unassigned_label"`
	Other      string   `json:"other_label"`

	KeyField      string            `json:"key_field"`
	SummaryField  string            `json:"summary_field"`
	DisplayFields []string          `json:"display_fields,omitempty"`
	DateFields    []string          `json:"date_fields,omitempty"`
	Labels        map[string]string `json:"labels,omitempty"`
	Placeholder   string            `json:"placeholder"`
}

// ScheduleConfig is only read by the schedule command.
type ScheduleConfig struct {
	// Spec accepts cron ("0 9 * * MON-FRI", "@daily"), HH:MM intervals
	// ("02:30"), Go durations ("6h") or daily:HH:MM.
	Spec       string `json:"spec"`
	Timezone   string `json:"timezone,omitempty"`
	RunOnStart bool   `json:"run_on_start,omitempty"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "console" | "json"
	File   string `json:"file,omitempty"`
}
