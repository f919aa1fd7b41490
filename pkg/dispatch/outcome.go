package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/hausasoft/elearn-notify/pkg/compose"
	"github.com/hausasoft/elearn-notify/pkg/logger"
)

// Channel identifies one of the three delivery channels.
type Channel string

const (
	ChannelPersistence Channel = "persistence"
	ChannelEmail       Channel = "email"
	ChannelRealtime    Channel = "realtime"
)

// Status is the terminal state of one channel attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusSkipped means the message carried no work for the channel,
	// e.g. no email directive or no address on file.
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one channel's delivery attempt.
type Outcome struct {
	Channel  Channel
	Status   Status
	Err      error
	Duration time.Duration
	// Delivered is the realtime subscriber count that received the push.
	Delivered int
	// Attempts is how many sends the email channel made, including retries.
	Attempts int
}

// Collector receives the per-channel outcomes of every dispatch, successful
// or not. Implementations must not block for long; dispatch waits for the
// collector before returning.
type Collector interface {
	Collect(ctx context.Context, msg compose.Message, outcomes map[Channel]Outcome)
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc func(ctx context.Context, msg compose.Message, outcomes map[Channel]Outcome)

func (f CollectorFunc) Collect(ctx context.Context, msg compose.Message, outcomes map[Channel]Outcome) {
	f(ctx, msg, outcomes)
}

// NewLogCollector returns a Collector writing one structured log line per
// channel outcome. Failures log at WARN (ERROR for persistence), successes
// at DEBUG.
func NewLogCollector(log *slog.Logger) Collector {
	return CollectorFunc(func(ctx context.Context, msg compose.Message, outcomes map[Channel]Outcome) {
		for _, out := range outcomes {
			attrs := []any{
				logger.Channel(string(out.Channel)),
				logger.UserID(msg.RecipientID),
				slog.String("event_id", msg.EventID),
				slog.String("status", string(out.Status)),
				slog.Duration("duration", out.Duration),
			}
			if out.Channel == ChannelRealtime {
				attrs = append(attrs, slog.Int("delivered", out.Delivered))
			}
			if out.Channel == ChannelEmail && out.Attempts > 0 {
				attrs = append(attrs, slog.Int("attempts", out.Attempts))
			}

			switch {
			case out.Status != StatusFailed:
				log.DebugContext(ctx, "notification channel delivery", attrs...)
			case out.Channel == ChannelPersistence:
				log.ErrorContext(ctx, "notification channel delivery failed", append(attrs, logger.Error(out.Err))...)
			default:
				log.WarnContext(ctx, "notification channel delivery failed", append(attrs, logger.Error(out.Err))...)
			}
		}
	})
}
