package config

import (
	"fmt"
	"strings"
	"time"
)

// durationField is a Go duration string config key. Blank means def.
type durationField struct {
	path string
	def  time.Duration
}

var (
	jiraTimeoutField     = durationField{path: "jira.timeout", def: DefaultJiraTimeout}
	deliveryTimeoutField = durationField{path: "delivery.timeout", def: DefaultSendTimeout}
)

// parse rejects malformed and non-positive values; a timeout of zero
// would fail every call.
func (f durationField) parse(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return f.def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use e.g. 30s, 2m)", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be > 0, got %s", s)
	}
	return d, nil
}

// value is for validated configs; an invalid value falls back to def.
func (f durationField) value(raw string) time.Duration {
	d, err := f.parse(raw)
	if err != nil {
		return f.def
	}
	return d
}
