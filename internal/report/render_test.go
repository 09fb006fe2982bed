package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jiradigest/internal/record"
)

func sampleGroups() []Group {
	a := withField(issue("A-1", "To Do", "Fix <bug> & more"), "assignee",
		record.Object(map[string]record.Value{"displayName": record.String("Alice")}))
	b := issue("A-2", "Done", "Second")
	c := issue("A-3", "Done", "Third")
	return GroupRecords([]record.Record{a, b, c}, GroupOptions{Field: "status"})
}

func newTestRenderer(m Markup) *Renderer {
	return NewRenderer(RenderOptions{
		DisplayFields: []string{"status", "assignee"},
		Markup:        m,
	})
}

func TestRenderList(t *testing.T) {
	rep := newTestRenderer(SlackMarkup{}).Render(sampleGroups(), StyleList, "Jira Report")

	want := strings.Join([]string{
		"*Jira Report*",
		"*To Do* (1)",
		"- A-1 — Fix &lt;bug&gt; &amp; more (Status: To Do, Assignee: Alice)",
		"*Done* (2)",
		"- A-2 — Second (Status: Done, Assignee: —)",
		"- A-3 — Third (Status: Done, Assignee: —)",
	}, "\n")
	require.Equal(t, want, rep.Text)
	assert.Equal(t, 2, rep.Groups)
	assert.Equal(t, 3, rep.Records)

	levels := make([]Level, len(rep.Boundaries))
	for i, b := range rep.Boundaries {
		levels[i] = b.Level
		assert.Equal(t, byte('\n'), rep.Text[b.Offset-1], "boundary %d not at a line start", i)
	}
	assert.Equal(t, []Level{LevelGroup, LevelRecord, LevelGroup, LevelRecord, LevelRecord}, levels)
}

func TestRenderPlain(t *testing.T) {
	rep := newTestRenderer(SlackMarkup{}).Render(sampleGroups(), StylePlain, "Weekly")

	want := strings.Join([]string{
		"*Weekly*",
		"- A-1 — Fix &lt;bug&gt; &amp; more (Status: To Do, Assignee: Alice)",
		"",
		"- A-2 — Second (Status: Done, Assignee: —)",
		"- A-3 — Third (Status: Done, Assignee: —)",
	}, "\n")
	require.Equal(t, want, rep.Text)
	require.Len(t, rep.Boundaries, 3)
	for _, b := range rep.Boundaries {
		assert.Equal(t, LevelGroup, b.Level)
		assert.True(t, strings.HasPrefix(rep.Text[b.Offset:], "- "))
	}
}

func TestRenderEmptyIsTitleOnly(t *testing.T) {
	rep := newTestRenderer(SlackMarkup{}).Render(nil, StyleList, "Jira Report")
	assert.Equal(t, "*Jira Report*", rep.Text)
	assert.Empty(t, rep.Boundaries)
	assert.Zero(t, rep.Records)
}

func TestRenderTelegramHTML(t *testing.T) {
	rep := newTestRenderer(HTMLMarkup{}).Render(sampleGroups(), StyleList, "R&D")
	lines := strings.Split(rep.Text, "\n")
	assert.Equal(t, "<b>R&amp;D</b>", lines[0])
	assert.Equal(t, "<b>To Do</b> (1)", lines[1])
	assert.Contains(t, lines[2], "Fix &lt;bug&gt; &amp; more")
}

func TestRenderLabelsAndDates(t *testing.T) {
	r := NewRenderer(RenderOptions{
		DisplayFields: []string{"updated", "customfield_1"},
		DateFields:    []string{"updated"},
		Labels:        map[string]string{"customfield_1": "Points"},
		Markup:        PlainMarkup{},
		FormatDate:    NewDateFormatter("%Y-%m-%d %H:%M", time.FixedZone("WIB", 7*3600)),
	})
	rec := issue("A-9", "Done", "multi\nline summary")
	rec = withField(rec, "updated", record.String("2024-05-01T10:20:30.000+0000"))
	rec = withField(rec, "customfield_1", record.Number(3))

	rep := r.Render([]Group{{Key: "Done", Records: []record.Record{rec}}}, StyleList, "T")

	lines := strings.Split(rep.Text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "- A-9 — multi line summary (Updated: 2024-05-01 17:20, Points: 3)", lines[2])
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle(" Plain ")
	require.NoError(t, err)
	assert.Equal(t, StylePlain, s)

	s, err = ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, StyleList, s)

	_, err = ParseStyle("table")
	assert.Error(t, err)
}

func TestRenderBlankTitleWritesNoLine(t *testing.T) {
	for _, m := range []Markup{SlackMarkup{}, HTMLMarkup{}, PlainMarkup{}} {
		rep := newTestRenderer(m).Render(sampleGroups(), StyleList, "  ")
		require.NotEmpty(t, rep.Boundaries, "%T", m)
		assert.Equal(t, 0, rep.Boundaries[0].Offset, "%T", m)
		assert.False(t, strings.HasPrefix(rep.Text, "\n"), "%T", m)
	}
	assert.Equal(t, "", newTestRenderer(PlainMarkup{}).Render(nil, StyleList, " ").Text)
}
