package report

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"jiradigest/internal/record"
)

func issue(key, status, summary string) record.Record {
	fields := map[string]record.Value{
		"summary": record.String(summary),
	}
	if status != "" {
		fields["status"] = record.Object(map[string]record.Value{"name": record.String(status)})
	}
	return record.Record{ID: "id-" + key, Key: key, Fields: fields}
}

func withField(r record.Record, name string, v record.Value) record.Record {
	r.Fields[name] = v
	return r
}

// requireChunksValid asserts the splitter invariants for any report.
func requireChunksValid(t *testing.T, rep Report, chunks []Chunk, maxLen int) {
	t.Helper()
	require.NotEmpty(t, chunks)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		require.Equal(t, i+1, c.Index)
		require.Equal(t, len(chunks), c.Total)
		require.LessOrEqual(t, utf8.RuneCountInString(c.Text), maxLen, "chunk %d over limit", c.Index)
		texts[i] = c.Text
	}
	require.Equal(t, rep.Text, strings.Join(texts, ChunkSeparator))

	// every record line lives whole inside one chunk
	for _, line := range strings.Split(rep.Text, "\n") {
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		found := false
		for _, c := range chunks {
			for _, cl := range strings.Split(c.Text, "\n") {
				if cl == line {
					found = true
				}
			}
		}
		require.True(t, found, "line split across chunks: %q", line)
	}
}

func manyIssues(groups, perGroup, summaryLen int) []record.Record {
	out := make([]record.Record, 0, groups*perGroup)
	for g := 0; g < groups; g++ {
		for i := 0; i < perGroup; i++ {
			key := fmt.Sprintf("P-%03d", g*perGroup+i)
			out = append(out, issue(key, fmt.Sprintf("S%d", g+1), strings.Repeat("x", summaryLen)))
		}
	}
	return out
}
