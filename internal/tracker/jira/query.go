package jira

import (
	"strings"

	"jiradigest/internal/record"
)

const DefaultPageSize = 100

// QuerySpec is one search: a JQL filter and the fields to return.
type QuerySpec struct {
	JQL      string
	Fields   []string
	PageSize int
}

// Normalize trims the query, deduplicates fields case-insensitively
// (first spelling wins), drops the key/id pseudo-fields the tracker always
// returns, and defaults PageSize.
func (q QuerySpec) Normalize() QuerySpec {
	out := QuerySpec{JQL: strings.TrimSpace(q.JQL), PageSize: q.PageSize}
	if out.PageSize <= 0 {
		out.PageSize = DefaultPageSize
	}
	seen := make(map[string]struct{}, len(q.Fields))
	for _, f := range q.Fields {
		f = strings.TrimSpace(f)
		if f == "" || record.IsPseudoField(f) {
			continue
		}
		k := strings.ToLower(f)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.Fields = append(out.Fields, f)
	}
	return out
}

// PageResult is one decoded search page.
type PageResult struct {
	Records []record.Record
	// NextToken continues a token-paged search; empty when done.
	NextToken string
	Last      bool
	// Total is the server's estimate (offset paging only, -1 if absent).
	Total int
	// Requested is the page size asked for; Effective is what the
	// server actually applied, which may be lower.
	Requested int
	Effective int
}
