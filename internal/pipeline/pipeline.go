// Package pipeline runs one report: fetch, group, render, split, deliver.
//
// A run is a synchronous batch. It keeps no state between runs, so an
// outer scheduler (or the schedule command) can simply call Run again.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"jiradigest/internal/apperr"
	"jiradigest/internal/config"
	"jiradigest/internal/delivery"
	"jiradigest/internal/record"
	"jiradigest/internal/report"
	"jiradigest/internal/tracker/jira"
	logx "jiradigest/pkg/logx"
)

// Fetcher returns every record matching a query.
type Fetcher interface {
	FetchAll(ctx context.Context, q jira.QuerySpec) ([]record.Record, error)
}

// Sender delivers chunks in order and stops at the first failure.
type Sender interface {
	Send(ctx context.Context, chunks []report.Chunk) ([]delivery.Outcome, error)
}

type Deps struct {
	Fetcher Fetcher
	// Sender is nil for a dry run.
	Sender Sender
	Log    logx.Logger
}

type Result struct {
	Records  int
	Groups   int
	Chunks   []report.Chunk
	Outcomes []delivery.Outcome
	Took     time.Duration
}

// Delivered reports whether every chunk went out.
func (r Result) Delivered() bool {
	return len(r.Chunks) > 0 && delivery.Delivered(r.Outcomes) == len(r.Chunks)
}

// Run executes one full run. Any error fails the whole run, including a
// partial delivery; chunks already sent stay sent.
func Run(ctx context.Context, cfg config.Config, deps Deps) (Result, error) {
	log := deps.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	start := time.Now()
	res, err := Prepare(ctx, cfg, deps.Fetcher, log)
	if err != nil {
		return res, err
	}
	if deps.Sender == nil {
		res.Took = time.Since(start)
		log.Info("dry run; nothing delivered", logx.Int("chunks", len(res.Chunks)))
		return res, nil
	}

	res.Outcomes, err = deps.Sender.Send(ctx, res.Chunks)
	res.Took = time.Since(start)
	fields := []logx.Field{
		logx.Int("records", res.Records),
		logx.Int("chunks", len(res.Chunks)),
		logx.Int("delivered", delivery.Delivered(res.Outcomes)),
		logx.Duration("took", res.Took),
	}
	if err != nil {
		log.Error("run failed during delivery", append(fields, logx.Err(err))...)
		return res, err
	}
	log.Info("run complete", fields...)
	return res, nil
}

// Prepare fetches and renders without delivering.
func Prepare(ctx context.Context, cfg config.Config, f Fetcher, log logx.Logger) (Result, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	var res Result
	if f == nil {
		return res, fmt.Errorf("pipeline: no fetcher")
	}

	renderer, err := NewRenderer(cfg)
	if err != nil {
		return res, err
	}
	style, err := report.ParseStyle(cfg.Report.Style)
	if err != nil {
		return res, apperr.Config(err)
	}

	recs, err := f.FetchAll(ctx, QuerySpec(cfg))
	if err != nil {
		return res, err
	}
	res.Records = len(recs)

	groups := report.GroupRecords(recs, report.GroupOptions{
		Field:      cfg.Report.GroupBy,
		Precedence: cfg.Report.GroupOrder,
		Unassigned: cfg.Report.Unassigned,
		Other:      cfg.Report.Other,
	})
	res.Groups = len(groups)

	rep := renderer.Render(groups, style, cfg.Report.Title)
	chunks, err := report.Split(rep, report.SplitOptions{
		MaxLen:  cfg.Report.ChunkLimit,
		Measure: report.MeasureFor(cfg.Delivery.Destination),
		Single:  cfg.Report.SingleMessage,
	})
	if err != nil {
		return res, &apperr.RenderError{Err: err}
	}
	res.Chunks = chunks

	if cfg.Report.SingleMessage && len(chunks) > 1 {
		log.Warn("single message requested but report exceeds chunk limit; splitting",
			logx.Int("chunk_limit", cfg.Report.ChunkLimit),
			logx.Int("chunks", len(chunks)),
		)
	}
	log.Info("report rendered",
		logx.Int("records", res.Records),
		logx.Int("groups", res.Groups),
		logx.Int("chunks", len(chunks)),
		logx.String("style", string(style)),
	)
	return res, nil
}

// QuerySpec derives the tracker query from cfg.
func QuerySpec(cfg config.Config) jira.QuerySpec {
	return jira.QuerySpec{
		JQL:      cfg.Jira.JQL,
		Fields:   cfg.RequestedFields(),
		PageSize: cfg.Jira.PageSize,
	}
}

// NewRenderer builds the renderer for cfg's report settings and destination dialect.
func NewRenderer(cfg config.Config) (*report.Renderer, error) {
	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return nil, apperr.Config(fmt.Errorf("report.timezone: %w", err))
	}
	return report.NewRenderer(report.RenderOptions{
		KeyField:      cfg.Report.KeyField,
		SummaryField:  cfg.Report.SummaryField,
		DisplayFields: cfg.Report.DisplayFields,
		DateFields:    cfg.Report.DateFields,
		Labels:        cfg.Report.Labels,
		Placeholder:   cfg.Report.Placeholder,
		Markup:        report.MarkupFor(cfg.Delivery.Destination),
		FormatDate:    report.NewDateFormatter(cfg.Report.DateFormat, loc),
	}), nil
}
