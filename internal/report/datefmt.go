package report

import (
	"strings"
	"time"

	strftime "github.com/ncruces/go-strftime"
)

// DateFormatter turns a raw tracker timestamp into display text.
type DateFormatter func(raw string) string

// Jira emits "2024-05-01T10:20:30.000+0000"; other sources use RFC 3339.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
}

const dateOnlyLayout = "2006-01-02"

// NewDateFormatter formats timestamps in loc with a strftime pattern.
// Date-only values are formatted as given, with no zone shift. Anything
// unparsable is returned unchanged.
func NewDateFormatter(pattern string, loc *time.Location) DateFormatter {
	if loc == nil {
		loc = time.UTC
	}
	return func(raw string) string {
		s := strings.TrimSpace(raw)
		if s == "" {
			return raw
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return strftime.Format(pattern, t.In(loc))
			}
		}
		if t, err := time.ParseInLocation(dateOnlyLayout, s, loc); err == nil {
			if dp := datePart(pattern); dp != "" {
				return strftime.Format(dp, t)
			}
			return s
		}
		return raw
	}
}

// datePart drops time directives from pattern so a date-only value does
// not print a fake midnight. It keeps the text before the first time
// directive, e.g. "%Y-%m-%d %H:%M" becomes "%Y-%m-%d".
func datePart(pattern string) string {
	for i := 0; i+1 < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		switch pattern[i+1] {
		case 'H', 'I', 'M', 'S', 'p', 'T', 'R', 'r', 'X', 'l', 'k', 'L', 'f', 'z', 'Z':
			return strings.TrimRight(pattern[:i], " T,")
		case '%':
			i++
		}
	}
	return pattern
}
