package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hausasoft/elearn-notify/pkg/async"
	"github.com/hausasoft/elearn-notify/pkg/compose"
	"github.com/hausasoft/elearn-notify/pkg/email"
	"github.com/hausasoft/elearn-notify/pkg/notifications"
	"github.com/hausasoft/elearn-notify/pkg/realtime"
)

const (
	defaultEmailTimeout    = 15 * time.Second
	defaultRealtimeTimeout = 3 * time.Second
	defaultEmailRetries    = 2
	defaultEmailBackoff    = 500 * time.Millisecond
)

// Dispatcher delivers one composed message over the persistence, email, and
// realtime channels. Channels run concurrently with independent failure
// boundaries: a slow or failing email provider never delays the inbox insert
// or the realtime push.
type Dispatcher struct {
	storage   notifications.Storage
	sender    email.EmailSender
	renderer  *email.Renderer
	publisher realtime.Publisher
	collector Collector

	emailTimeout    time.Duration
	realtimeTimeout time.Duration
	emailRetries    int
	emailBackoff    time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCollector sets the outcome collector. Defaults to a no-op.
func WithCollector(c Collector) Option {
	return func(d *Dispatcher) { d.collector = c }
}

// WithEmailTimeout bounds the total email attempt, retries included.
func WithEmailTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.emailTimeout = t }
}

// WithRealtimeTimeout bounds the realtime publish.
func WithRealtimeTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.realtimeTimeout = t }
}

// WithEmailRetries sets how many times a failed email send is retried.
func WithEmailRetries(n int) Option {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.emailRetries = n
		}
	}
}

// WithEmailBackoff sets the linear backoff unit between email retries: the
// n-th retry waits n times this duration.
func WithEmailBackoff(b time.Duration) Option {
	return func(d *Dispatcher) { d.emailBackoff = b }
}

// New creates a Dispatcher over the three delivery channels.
func New(storage notifications.Storage, sender email.EmailSender, renderer *email.Renderer, publisher realtime.Publisher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		storage:         storage,
		sender:          sender,
		renderer:        renderer,
		publisher:       publisher,
		collector:       NewLogCollector(slog.New(slog.DiscardHandler)),
		emailTimeout:    defaultEmailTimeout,
		realtimeTimeout: defaultRealtimeTimeout,
		emailRetries:    defaultEmailRetries,
		emailBackoff:    defaultEmailBackoff,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch attempts all three channels for one message and reports every
// outcome to the collector. The returned error is non-nil only when the
// persistence insert failed; email and realtime failures are recorded in the
// outcomes and swallowed, since those channels are best-effort.
func (d *Dispatcher) Dispatch(ctx context.Context, msg compose.Message) (map[Channel]Outcome, error) {
	record := notifications.Notification{
		ID:        uuid.New().String(),
		UserID:    msg.RecipientID,
		Category:  msg.Category,
		Message:   msg.Body,
		Link:      msg.Link,
		CreatedAt: msg.CreatedAt,
	}

	persistence := async.Async(ctx, record, d.persist)
	emailCh := async.Async(ctx, msg, d.sendEmail)
	realtimeCh := async.Async(ctx, record, d.publish)

	channels := []Channel{ChannelPersistence, ChannelEmail, ChannelRealtime}
	futures := []*async.Future[Outcome]{persistence, emailCh, realtimeCh}

	outcomes := make(map[Channel]Outcome, len(channels))
	for i, f := range futures {
		out, err := f.Await()
		if err != nil {
			// Context was canceled before the channel ran.
			out = Outcome{Channel: channels[i], Status: StatusFailed, Err: err}
		}
		outcomes[channels[i]] = out
	}

	d.collector.Collect(ctx, msg, outcomes)

	if out := outcomes[ChannelPersistence]; out.Status == StatusFailed {
		return outcomes, fmt.Errorf("%w: %w", ErrPersistenceFailed, out.Err)
	}
	return outcomes, nil
}

func (d *Dispatcher) persist(ctx context.Context, record notifications.Notification) (out Outcome, _ error) {
	out = Outcome{Channel: ChannelPersistence, Status: StatusSucceeded}
	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("%w: %v", ErrChannelPanicked, r)
		}
	}()

	if err := d.storage.Create(ctx, record); err != nil {
		out.Status = StatusFailed
		out.Err = err
	}
	return out, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, msg compose.Message) (out Outcome, _ error) {
	out = Outcome{Channel: ChannelEmail, Status: StatusSucceeded}
	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("%w: %v", ErrChannelPanicked, r)
		}
	}()

	if msg.Email == nil || msg.RecipientEmail == "" {
		out.Status = StatusSkipped
		return out, nil
	}

	subject, body, err := d.renderer.Render(msg.Email.Template, msg.Language, msg.Email.Data)
	if err != nil {
		// A broken template never recovers on retry.
		out.Status = StatusFailed
		out.Err = err
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.emailTimeout)
	defer cancel()

	params := email.SendEmailParams{
		SendTo:   msg.RecipientEmail,
		Subject:  subject,
		BodyHTML: body,
		Tag:      string(msg.Email.Template),
	}

	for attempt := 1; attempt <= d.emailRetries+1; attempt++ {
		out.Attempts = attempt

		if err = d.sender.SendEmail(ctx, params); err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			break
		}

		// Linear backoff before the next attempt.
		if attempt <= d.emailRetries {
			select {
			case <-ctx.Done():
				err = ctx.Err()
			case <-time.After(time.Duration(attempt) * d.emailBackoff):
				continue
			}
			break
		}
	}

	out.Status = StatusFailed
	out.Err = err
	return out, nil
}

func (d *Dispatcher) publish(ctx context.Context, record notifications.Notification) (out Outcome, _ error) {
	out = Outcome{Channel: ChannelRealtime, Status: StatusSucceeded}
	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("%w: %v", ErrChannelPanicked, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.realtimeTimeout)
	defer cancel()

	// Zero delivered with no error means nobody was connected; realtime is
	// ephemeral so that still counts as success.
	count, err := d.publisher.Publish(ctx, record.UserID, record)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out, nil
	}
	out.Delivered = count
	return out, nil
}
