// Package scheduler triggers report runs on a cron or interval schedule.
//
// Runs never overlap: a trigger that fires while the previous run is still
// active is skipped and logged. Each triggered run is an independent batch.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	logx "jiradigest/pkg/logx"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

type Config struct {
	Spec       string
	Timezone   string // IANA TZ, e.g. "Asia/Jakarta"; empty means Local
	RunOnStart bool
}

type Stats struct {
	Runs    int64
	Failed  int64
	Skipped int64
}

type Scheduler struct {
	mu sync.Mutex

	log logx.Logger
	job Job

	cfg  Config
	spec ParsedSpec
	loc  *time.Location

	c   *cron.Cron
	ctx context.Context

	running atomic.Bool
	runs    atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
}

func New(job Job, log logx.Logger) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{
		job: job,
		log: log.With(logx.String("comp", "scheduler")),
		loc: time.Local,
	}
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Compile parses and validates cfg.
func Compile(cfg Config) (ParsedSpec, *time.Location, error) {
	spec, err := ParseSchedule(cfg.Spec)
	if err != nil {
		return ParsedSpec{}, nil, err
	}
	if _, err := parser.Parse(spec.Expr()); err != nil {
		return ParsedSpec{}, nil, err
	}
	loc := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return ParsedSpec{}, nil, err
		}
	}
	return spec, loc, nil
}

// Apply installs cfg. When the scheduler is running and the schedule or
// timezone changed, the cron is restarted; an active run is not interrupted.
func (s *Scheduler) Apply(cfg Config) error {
	spec, loc, err := Compile(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := spec.Expr() != s.spec.Expr() || loc.String() != s.loc.String()
	s.cfg, s.spec, s.loc = cfg, spec, loc
	if s.c != nil && changed {
		s.restartLocked()
	}
	return nil
}

// Start begins triggering. ctx is the parent of every run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return errors.New("scheduler already started")
	}
	if s.spec.Expr() == "" {
		return errors.New("scheduler: no schedule applied")
	}
	s.ctx = ctx
	if err := s.startLocked(); err != nil {
		return err
	}
	if s.cfg.RunOnStart {
		go s.Trigger(ctx)
	}
	return nil
}

// Stop halts triggering and waits for an active run to finish, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the scheduler and blocks until ctx ends.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

// Trigger runs the job now unless a run is already active, in which case
// it returns false.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.log.Warn("previous run still active; trigger skipped")
		return false
	}
	defer s.running.Store(false)

	n := s.runs.Add(1)
	start := time.Now()
	err := s.job(ctx)
	fields := []logx.Field{logx.Int64("run", n), logx.Duration("took", time.Since(start))}
	if next := s.Next(); !next.IsZero() {
		fields = append(fields, logx.Time("next", next))
	}
	if err != nil {
		s.failed.Add(1)
		s.log.Error("scheduled run failed", append(fields, logx.Err(err))...)
	} else {
		s.log.Info("scheduled run ok", fields...)
	}
	return true
}

// Running reports whether a run is active.
func (s *Scheduler) Running() bool { return s.running.Load() }

// Next is the next trigger time, zero when stopped.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return time.Time{}
	}
	for _, e := range s.c.Entries() {
		if !e.Next.IsZero() {
			return e.Next
		}
	}
	return time.Time{}
}

func (s *Scheduler) Stats() Stats {
	return Stats{Runs: s.runs.Load(), Failed: s.failed.Load(), Skipped: s.skipped.Load()}
}

func (s *Scheduler) startLocked() error {
	c := cron.New(cron.WithParser(parser), cron.WithLocation(s.loc))
	ctx := s.ctx
	if _, err := c.AddFunc(s.spec.Expr(), func() { s.Trigger(ctx) }); err != nil {
		return err
	}
	c.Start()
	s.c = c
	s.log.Info("scheduler started",
		logx.String("schedule", s.spec.String()),
		logx.String("source", s.spec.Source),
		logx.String("tz", s.loc.String()),
	)
	return nil
}

// restartLocked swaps the cron without waiting for an active run; the
// running flag still prevents overlap with the new cron's first trigger.
func (s *Scheduler) restartLocked() {
	old := s.c
	old.Stop()
	if err := s.startLocked(); err != nil {
		s.log.Error("scheduler restart failed", logx.Err(err))
		old.Start()
		s.c = old
		return
	}
	s.log.Info("scheduler restarted", logx.String("schedule", s.spec.String()), logx.String("tz", s.loc.String()))
}
