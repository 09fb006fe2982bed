package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlackEscapeFencesEmphasisMarkers(t *testing.T) {
	m := SlackMarkup{}
	got := m.Escape("fix *all* the_things ~now~ `x` & <y>")

	// Stripping the fences leaves the literal text with only entities escaped.
	assert.Equal(t, "fix *all* the_things ~now~ `x` &amp; &lt;y&gt;", strings.ReplaceAll(got, zwsp, ""))
	for _, mark := range []string{"*", "_", "~", "`"} {
		i := strings.Index(got, mark)
		assert.True(t, strings.HasPrefix(got[i-len(zwsp):], zwsp+mark+zwsp), "marker %q not fenced", mark)
	}
}

func TestSlackBoldKeepsOuterMarkers(t *testing.T) {
	m := SlackMarkup{}
	got := m.Bold("*In* Progress")
	assert.True(t, strings.HasPrefix(got, "*"+zwsp+"*"+zwsp+"In"))
	assert.True(t, strings.HasSuffix(got, " Progress*"))
	assert.Equal(t, "", m.Bold("   "))
}

func TestBoldBlankIsEmpty(t *testing.T) {
	for _, m := range []Markup{SlackMarkup{}, HTMLMarkup{}, PlainMarkup{}} {
		assert.Equal(t, "", m.Bold(" \t"), "%T", m)
	}
	assert.Equal(t, "<b>R&amp;D</b>", HTMLMarkup{}.Bold("R&D"))
}

func TestMeasureFor(t *testing.T) {
	s := "ok 🚀"
	assert.Equal(t, 4, MeasureFor("slack")(s))
	assert.Equal(t, 5, MeasureFor(" Telegram ")(s))
	assert.Equal(t, 4, MeasureFor("")(s))
	assert.Equal(t, 3, UTF16Units("é€a"))
}
