// Package jira is a read-only Jira REST search client.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"jiradigest/internal/apperr"
	"jiradigest/internal/record"
	logx "jiradigest/pkg/logx"
)

const (
	APIv2 = "2"
	APIv3 = "3"

	system      = "jira"
	maxErrBody  = 2048
	userAgent   = "jiradigest"
	defaultWait = 30 * time.Second
)

type Config struct {
	BaseURL string
	// PAT, when set, is sent as a bearer token and wins over basic auth.
	PAT      string
	Email    string
	APIToken string

	APIVersion string
	RatePerSec float64
	Burst      int
	Timeout    time.Duration

	HTTPClient *http.Client
}

type Client struct {
	base    string
	apiVer  string
	pat     string
	user    string
	pass    string
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger
}

func NewClient(cfg Config, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultWait
		}
		hc = &http.Client{Timeout: timeout}
	}
	ver := strings.TrimSpace(cfg.APIVersion)
	if ver != APIv2 {
		ver = APIv3
	}
	lim := rate.Inf
	if cfg.RatePerSec > 0 {
		lim = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		base:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiVer:  ver,
		pat:     strings.TrimSpace(cfg.PAT),
		user:    strings.TrimSpace(cfg.Email),
		pass:    strings.TrimSpace(cfg.APIToken),
		http:    hc,
		limiter: rate.NewLimiter(lim, burst),
		log:     log.With(logx.String("comp", "jira"), logx.String("api", ver)),
	}
}

// APIVersion is the resolved paging protocol; anything but "2" means "3".
func (c *Client) APIVersion() string { return c.apiVer }

func (c *Client) apiURL(path string, q url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) authorize(req *http.Request) {
	switch {
	case c.pat != "":
		req.Header.Set("Authorization", "Bearer "+c.pat)
	case c.user != "" && c.pass != "":
		req.SetBasicAuth(c.user, c.pass)
	}
}

// doJSON runs one request and decodes a 2xx body into out. It never retries.
func (c *Client) doJSON(ctx context.Context, op, method, u string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("jira %s: encode request: %w", op, err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return &apperr.TransportError{System: system, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.TransportError{System: system, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &apperr.TransportError{
			System:     system,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return &apperr.TransportError{System: system, Op: op, StatusCode: resp.StatusCode, Err: err}
		}
		return &apperr.MalformedResponseError{System: system, Op: op, Err: err}
	}
	return nil
}

type wireIssue struct {
	ID     string                  `json:"id"`
	Key    string                  `json:"key"`
	Fields map[string]record.Value `json:"fields"`
}

func toRecords(op string, issues []wireIssue) ([]record.Record, error) {
	out := make([]record.Record, 0, len(issues))
	for i, is := range issues {
		if strings.TrimSpace(is.ID) == "" {
			return nil, &apperr.MalformedResponseError{System: system, Op: op, Err: fmt.Errorf("issue %d (%q) has no id", i, is.Key)}
		}
		fields := is.Fields
		if fields == nil {
			fields = map[string]record.Value{}
		}
		out = append(out, record.Record{ID: is.ID, Key: is.Key, Fields: fields})
	}
	return out, nil
}
