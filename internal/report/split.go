package report

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ChunkSeparator is the newline dropped at every split point. Joining the
// chunk texts with it reproduces Report.Text.
const ChunkSeparator = "\n"

var (
	// ErrLineTooLong means one line alone exceeds the chunk limit. Lines are never cut.
	ErrLineTooLong  = errors.New("report line exceeds chunk limit")
	ErrInvalidLimit = errors.New("chunk limit must be positive")
)

// Chunk is one message of a report. Index is 1-based.
type Chunk struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	Text  string `json:"text"`
}

// Len is the chunk length in characters (code points).
func (c Chunk) Len() int { return utf8.RuneCountInString(c.Text) }

// Measure counts text in a destination's length unit.
type Measure func(s string) int

// CodePoints is Slack's unit.
func CodePoints(s string) int { return utf8.RuneCountInString(s) }

// UTF16Units is Telegram's unit: characters outside the BMP (most emoji)
// count twice.
func UTF16Units(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// MeasureFor picks the length unit of a destination name.
func MeasureFor(destination string) Measure {
	if strings.EqualFold(strings.TrimSpace(destination), "telegram") {
		return UTF16Units
	}
	return CodePoints
}

type SplitOptions struct {
	// MaxLen caps each chunk, counted by Measure.
	MaxLen int
	// Measure defaults to CodePoints.
	Measure Measure
	// Single asks for one message. A report that does not fit is split anyway.
	Single bool
}

// span is a half-open byte range of Report.Text with its measured length.
type span struct {
	start, end int
	runes      int
}

// Split cuts rep into chunks of at most MaxLen units. Top-level
// segments (the preamble and each LevelGroup section) are packed greedily.
// A segment that cannot fit in a chunk of its own is broken at its
// LevelRecord boundaries, then at line breaks, and the pieces are packed
// the same way.
func Split(rep Report, opts SplitOptions) ([]Chunk, error) {
	if opts.MaxLen <= 0 {
		return nil, ErrInvalidLimit
	}
	measure := opts.Measure
	if measure == nil {
		measure = CodePoints
	}
	text := rep.Text
	if measure(text) <= opts.MaxLen {
		return []Chunk{{Index: 1, Total: 1, Text: text}}, nil
	}

	var (
		chunks []span
		cur    span
		open   bool
	)
	flush := func() {
		if open {
			chunks = append(chunks, cur)
			open = false
		}
	}
	add := func(u span) {
		// An empty span (blank title) never becomes a chunk of its own.
		if open && cur.runes == 0 {
			cur = u
			return
		}
		if open && cur.runes+1+u.runes <= opts.MaxLen {
			cur.end = u.end
			cur.runes += 1 + u.runes
			return
		}
		flush()
		cur, open = u, true
	}

	for _, seg := range segments(text, rep.Boundaries, measure) {
		if seg.runes <= opts.MaxLen {
			add(seg)
			continue
		}
		for _, piece := range subdivide(text, seg, rep.Boundaries, measure) {
			if piece.runes > opts.MaxLen {
				return nil, fmt.Errorf("%w: %d > %d at byte %d", ErrLineTooLong, piece.runes, opts.MaxLen, piece.start)
			}
			add(piece)
		}
	}
	flush()

	out := make([]Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = Chunk{Index: i + 1, Total: len(chunks), Text: text[c.start:c.end]}
	}
	return out, nil
}

// segments cuts text at the LevelGroup boundaries.
func segments(text string, bs []Boundary, measure Measure) []span {
	cuts := make([]int, 0, len(bs))
	for _, b := range bs {
		if b.Level == LevelGroup {
			cuts = append(cuts, b.Offset)
		}
	}
	return cut(text, 0, len(text), cuts, measure)
}

// subdivide breaks seg at the LevelRecord boundaries inside it, and any
// piece still holding several lines at its line breaks.
func subdivide(text string, seg span, bs []Boundary, measure Measure) []span {
	var cuts []int
	for _, b := range bs {
		if b.Level == LevelRecord && b.Offset > seg.start && b.Offset < seg.end {
			cuts = append(cuts, b.Offset)
		}
	}
	var out []span
	for _, p := range cut(text, seg.start, seg.end, cuts, measure) {
		if !strings.Contains(text[p.start:p.end], ChunkSeparator) {
			out = append(out, p)
			continue
		}
		var lines []int
		for i := p.start; i < p.end; i++ {
			if text[i] == '\n' {
				lines = append(lines, i+1)
			}
		}
		out = append(out, cut(text, p.start, p.end, lines, measure)...)
	}
	return out
}

// cut splits text[start:end] before each offset in cuts. The byte before a
// cut is the separator newline and belongs to neither side.
func cut(text string, start, end int, cuts []int, measure Measure) []span {
	var out []span
	from := start
	for _, c := range cuts {
		if c <= from || c > end {
			continue
		}
		out = append(out, mkspan(text, from, c-1, measure))
		from = c
	}
	return append(out, mkspan(text, from, end, measure))
}

func mkspan(text string, start, end int, measure Measure) span {
	return span{start: start, end: end, runes: measure(text[start:end])}
}
