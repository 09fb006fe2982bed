package delivery

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"jiradigest/internal/apperr"
	"jiradigest/internal/report"
	logx "jiradigest/pkg/logx"
)

type SenderConfig struct {
	RatePerSec float64
	// Timeout bounds each Deliver call.
	Timeout time.Duration
}

// Sender delivers a run's chunks in order through one Deliverer.
type Sender struct {
	d       Deliverer
	log     logx.Logger
	timeout time.Duration
	limiter *rate.Limiter
}

func NewSender(d Deliverer, cfg SenderConfig, log logx.Logger) *Sender {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Sender{
		d:       d,
		log:     log.With(logx.String("comp", "delivery"), logx.String("destination", d.Name())),
		timeout: cfg.Timeout,
		// burst 1: chunks of one report go out evenly spaced
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

// Send posts chunks sequentially and stops at the first failure. The
// returned outcomes cover every attempted chunk; the error, when non-nil,
// is an *apperr.DeliveryError for the failed chunk or the context error.
func (s *Sender) Send(ctx context.Context, chunks []report.Chunk) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(chunks))
	for _, c := range chunks {
		if err := s.limiter.Wait(ctx); err != nil {
			return outcomes, err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		start := time.Now()
		err := s.d.Deliver(callCtx, c.Text)
		cancel()

		fields := []logx.Field{
			logx.Int("chunk", c.Index),
			logx.Int("total", c.Total),
			logx.Int("chars", utf8.RuneCountInString(c.Text)),
			logx.Duration("took", time.Since(start)),
		}
		if err == nil {
			s.log.Info("chunk delivered", fields...)
			outcomes = append(outcomes, Outcome{Chunk: c.Index, Delivered: true})
			continue
		}

		de := &apperr.DeliveryError{
			Destination: s.d.Name(),
			Chunk:       c.Index,
			TooLarge:    errors.Is(err, ErrTooLarge),
			Err:         err,
		}
		fields = append(fields, logx.Err(err))
		if de.TooLarge {
			s.log.Error("chunk rejected as too large", append(fields, logx.Int("limit", s.d.Limit()))...)
		} else {
			s.log.Error("chunk delivery failed", fields...)
		}
		outcomes = append(outcomes, Outcome{Chunk: c.Index, Err: de})
		return outcomes, de
	}
	return outcomes, nil
}
