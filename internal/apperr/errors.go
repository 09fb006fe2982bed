// Package apperr defines the error taxonomy shared by every stage of a report
// run and maps it onto process exit codes.
package apperr

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitConfig    = 2
	ExitFetch     = 3
	ExitRender    = 4
	ExitDelivery  = 5
	maxBodyInText = 300
)

// ConfigurationError reports a missing or invalid configuration value.
// It is raised before any network activity.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// Config wraps err as a ConfigurationError. A nil err stays nil.
func Config(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return err
	}
	return &ConfigurationError{Err: err}
}

// TransportError reports a network failure, a timeout, or a non-2xx response
// from an external system.
type TransportError struct {
	System     string // "jira" | "slack" | "telegram"
	Op         string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.System + " " + e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status=%d", e.StatusCode)
		if e.Body != "" {
			msg += " body=" + truncate(e.Body, maxBodyInText)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response body that could not be parsed
// into the expected shape.
type MalformedResponseError struct {
	System string
	Op     string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s %s: malformed response: %v", e.System, e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// DeliveryError reports a chunk the destination rejected.
// TooLarge is set when the destination refused the payload for its size,
// which means the splitter produced an oversized chunk.
type DeliveryError struct {
	Destination string
	Chunk       int // 1-based
	TooLarge    bool
	Err         error
}

func (e *DeliveryError) Error() string {
	reason := "rejected"
	if e.TooLarge {
		reason = "rejected as too large"
	}
	return fmt.Sprintf("%s: chunk %d %s: %v", e.Destination, e.Chunk, reason, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// RenderError reports a report that could not be split into deliverable chunks.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "render: " + e.Err.Error() }
func (e *RenderError) Unwrap() error { return e.Err }

// ExitCode maps err onto the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		ce *ConfigurationError
		te *TransportError
		me *MalformedResponseError
		de *DeliveryError
		re *RenderError
	)
	switch {
	case errors.As(err, &ce):
		return ExitConfig
	case errors.As(err, &de):
		return ExitDelivery
	case errors.As(err, &te):
		if te.System == "jira" {
			return ExitFetch
		}
		return ExitDelivery
	case errors.As(err, &me):
		if me.System == "jira" {
			return ExitFetch
		}
		return ExitDelivery
	case errors.As(err, &re):
		return ExitRender
	default:
		return ExitFailure
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n < 10 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
