package report

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"jiradigest/internal/record"
)

// Style selects the report layout.
type Style string

const (
	// StyleList prints a bold header with a count per group.
	StyleList Style = "list"
	// StylePlain prints record lines only, one blank line between groups.
	StylePlain Style = "plain"
)

func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(strings.TrimSpace(s))); st {
	case StyleList, StylePlain:
		return st, nil
	case "":
		return StyleList, nil
	default:
		return "", fmt.Errorf("unknown report style %q (want list or plain)", s)
	}
}

// Level ranks a split point. Split packs LevelGroup segments and only
// falls back to LevelRecord points inside a segment that is too long.
type Level int

const (
	LevelGroup Level = iota + 1
	LevelRecord
)

func (l Level) String() string {
	switch l {
	case LevelGroup:
		return "group"
	case LevelRecord:
		return "record"
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

// Boundary is the byte offset of a line start in Report.Text where a
// chunk may begin. The newline before it is the separator dropped on split.
type Boundary struct {
	Offset int
	Level  Level
}

// Report is the full rendered text. Boundaries are ascending.
type Report struct {
	Text       string
	Boundaries []Boundary
	Groups     int
	Records    int
}

type RenderOptions struct {
	KeyField      string
	SummaryField  string
	DisplayFields []string
	DateFields    []string
	// Labels overrides the title-cased field name shown in a line.
	Labels      map[string]string
	Placeholder string
	Markup      Markup
	FormatDate  DateFormatter
}

// Renderer is safe for concurrent use once built.
type Renderer struct {
	opts   RenderOptions
	dates  map[string]struct{}
	labels map[string]string
}

func NewRenderer(opts RenderOptions) *Renderer {
	if opts.KeyField == "" {
		opts.KeyField = "key"
	}
	if opts.SummaryField == "" {
		opts.SummaryField = "summary"
	}
	if opts.Placeholder == "" {
		opts.Placeholder = "—"
	}
	if opts.Markup == nil {
		opts.Markup = SlackMarkup{}
	}
	if opts.FormatDate == nil {
		opts.FormatDate = func(raw string) string { return raw }
	}

	r := &Renderer{
		opts:   opts,
		dates:  make(map[string]struct{}, len(opts.DateFields)),
		labels: make(map[string]string, len(opts.DisplayFields)),
	}
	for _, f := range opts.DateFields {
		r.dates[strings.ToLower(f)] = struct{}{}
	}
	caser := cases.Title(language.English)
	for _, f := range opts.DisplayFields {
		label, ok := opts.Labels[f]
		if !ok {
			label = caser.String(f)
		}
		r.labels[f] = label
	}
	return r
}

// Render lays out groups under title. An empty group list yields the title alone.
func (r *Renderer) Render(groups []Group, style Style, title string) Report {
	m := r.opts.Markup
	var (
		b   strings.Builder
		rep Report
	)
	// A blank title writes no line.
	started := false
	line := func(s string, level Level) {
		if started {
			b.WriteByte('\n')
		}
		started = true
		if level != 0 {
			rep.Boundaries = append(rep.Boundaries, Boundary{Offset: b.Len(), Level: level})
		}
		b.WriteString(s)
	}

	if t := m.Bold(oneLine(title)); t != "" {
		line(t, 0)
	}
	for _, g := range groups {
		if len(g.Records) == 0 {
			continue
		}
		rep.Groups++
		switch style {
		case StylePlain:
			if rep.Groups > 1 {
				line("", 0)
			}
			for _, rec := range g.Records {
				line(r.recordLine(rec), LevelGroup)
				rep.Records++
			}
		default:
			line(m.Bold(oneLine(g.Key))+" ("+strconv.Itoa(len(g.Records))+")", LevelGroup)
			for _, rec := range g.Records {
				line(r.recordLine(rec), LevelRecord)
				rep.Records++
			}
		}
	}
	rep.Text = b.String()
	return rep
}

// recordLine renders "- KEY — summary (Label: value, Label: value)".
func (r *Renderer) recordLine(rec record.Record) string {
	m := r.opts.Markup
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(m.Escape(r.value(rec, r.opts.KeyField)))
	b.WriteString(" — ")
	b.WriteString(m.Escape(r.value(rec, r.opts.SummaryField)))
	if len(r.opts.DisplayFields) == 0 {
		return b.String()
	}
	b.WriteString(" (")
	for i, f := range r.opts.DisplayFields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.Escape(r.labels[f]))
		b.WriteString(": ")
		b.WriteString(m.Escape(r.value(rec, f)))
	}
	b.WriteString(")")
	return b.String()
}

func (r *Renderer) value(rec record.Record, field string) string {
	v, ok := rec.Field(field)
	if !ok || v.IsZero() {
		return r.opts.Placeholder
	}
	s := v.Display()
	if raw, isStr := v.Str(); isStr {
		if _, isDate := r.dates[strings.ToLower(field)]; isDate {
			s = r.opts.FormatDate(raw)
		}
	}
	s = oneLine(s)
	if s == "" {
		return r.opts.Placeholder
	}
	return s
}

// oneLine folds line breaks so a value cannot open a new split point.
func oneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(s), " ")
}
