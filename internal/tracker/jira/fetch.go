package jira

import (
	"context"
	"fmt"
	"time"

	"jiradigest/internal/apperr"
	"jiradigest/internal/record"
	logx "jiradigest/pkg/logx"
)

// FetchAll pages through every record matching q and returns them in
// server order with duplicates (same ID) removed, first occurrence kept.
// Every page request waits on the client's rate limiter first.
func (c *Client) FetchAll(ctx context.Context, q QuerySpec) ([]record.Record, error) {
	q = q.Normalize()
	if q.JQL == "" {
		return nil, apperr.Config(fmt.Errorf("jira: empty jql"))
	}

	start := time.Now()
	var (
		out   []record.Record
		seen  = map[string]struct{}{}
		dups  int
		pages int
	)
	collect := func(p PageResult) {
		for _, r := range p.Records {
			if _, dup := seen[r.ID]; dup {
				dups++
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}

	var err error
	if c.APIVersion() == APIv2 {
		pages, err = c.fetchOffset(ctx, q, collect)
	} else {
		pages, err = c.fetchToken(ctx, q, collect)
	}
	if err != nil {
		return nil, err
	}

	if dups > 0 {
		c.log.Warn("dropped duplicate records across pages", logx.Int("duplicates", dups))
	}
	c.log.Info("fetched records",
		logx.Int("records", len(out)),
		logx.Int("pages", pages),
		logx.Duration("took", time.Since(start)),
	)
	return out, nil
}

func (c *Client) fetchToken(ctx context.Context, q QuerySpec, collect func(PageResult)) (int, error) {
	token := ""
	used := map[string]struct{}{}
	for pages := 1; ; pages++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return pages - 1, &apperr.TransportError{System: system, Op: "search/jql", Err: err}
		}
		p, err := c.SearchToken(ctx, q, token)
		if err != nil {
			return pages - 1, err
		}
		collect(p)
		c.log.Debug("page fetched", logx.Int("page", pages), logx.Int("records", len(p.Records)), logx.Bool("last", p.Last))
		if p.Last {
			return pages, nil
		}
		if _, loop := used[p.NextToken]; loop {
			return pages, &apperr.MalformedResponseError{System: system, Op: "search/jql", Err: fmt.Errorf("page token %q repeated", p.NextToken)}
		}
		used[p.NextToken] = struct{}{}
		token = p.NextToken
	}
}

func (c *Client) fetchOffset(ctx context.Context, q QuerySpec, collect func(PageResult)) (int, error) {
	startAt := 0
	clampLogged := false
	for pages := 1; ; pages++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return pages - 1, &apperr.TransportError{System: system, Op: "search", Err: err}
		}
		p, err := c.SearchOffset(ctx, q, startAt)
		if err != nil {
			return pages - 1, err
		}
		collect(p)
		if p.Effective < p.Requested && !clampLogged {
			c.log.Debug("server clamped page size", logx.Int("requested", p.Requested), logx.Int("effective", p.Effective))
			clampLogged = true
		}
		c.log.Debug("page fetched",
			logx.Int("page", pages),
			logx.Int("start_at", startAt),
			logx.Int("records", len(p.Records)),
			logx.Int("total_hint", p.Total),
		)
		if p.Last {
			return pages, nil
		}
		startAt += len(p.Records)
	}
}
