package report

import (
	"html"
	"strings"
)

// Markup formats report text for one chat dialect. Output of Bold and
// Escape is always balanced within a single line.
type Markup interface {
	Escape(s string) string
	Bold(s string) string
}

// SlackMarkup is Slack mrkdwn. &, < and > are entity-escaped. mrkdwn has
// no escape for the emphasis markers, so *, _, ~ and ` are fenced with
// zero-width spaces and can no longer open or close a span.
type SlackMarkup struct{}

const zwsp = "\u200b"

var slackEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;",
	"*", zwsp+"*"+zwsp,
	"_", zwsp+"_"+zwsp,
	"~", zwsp+"~"+zwsp,
	"`", zwsp+"`"+zwsp,
)

func (SlackMarkup) Escape(s string) string { return slackEscaper.Replace(s) }

func (m SlackMarkup) Bold(s string) string {
	s = m.Escape(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return "*" + s + "*"
}

// HTMLMarkup is Telegram's HTML parse mode.
type HTMLMarkup struct{}

func (HTMLMarkup) Escape(s string) string { return html.EscapeString(s) }
func (m HTMLMarkup) Bold(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return "<b>" + m.Escape(s) + "</b>"
}

// PlainMarkup leaves text untouched (previews, logs).
type PlainMarkup struct{}

func (PlainMarkup) Escape(s string) string { return s }
func (PlainMarkup) Bold(s string) string   { return strings.TrimSpace(s) }

// MarkupFor picks the dialect of a destination name ("slack", "telegram").
// Unknown names get Slack mrkdwn.
func MarkupFor(destination string) Markup {
	switch strings.ToLower(strings.TrimSpace(destination)) {
	case "telegram":
		return HTMLMarkup{}
	case "plain", "text":
		return PlainMarkup{}
	default:
		return SlackMarkup{}
	}
}
