package delivery

import (
	"context"
	"errors"
	"strings"
)

const (
	DestinationSlack    = "slack"
	DestinationTelegram = "telegram"

	// Server-side message ceilings, in characters.
	SlackHardLimit    = 40000
	TelegramHardLimit = 4096
)

// ErrTooLarge marks a send the destination refused because of its size.
// Deliverers wrap it so Sender can tell it apart from other rejections.
var ErrTooLarge = errors.New("message too large")

// Deliverer posts one message.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
	// Limit is the destination's hard ceiling in characters.
	Limit() int
	Name() string
}

// HardLimit returns the ceiling for a destination name, or 0 if unknown.
func HardLimit(destination string) int {
	switch strings.ToLower(strings.TrimSpace(destination)) {
	case DestinationSlack:
		return SlackHardLimit
	case DestinationTelegram:
		return TelegramHardLimit
	}
	return 0
}

// Outcome is the per-chunk result of a Send. Chunk is 1-based.
type Outcome struct {
	Chunk     int
	Delivered bool
	Err       error
}

// Delivered counts successful outcomes.
func Delivered(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Delivered {
			n++
		}
	}
	return n
}
