package provisioner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/aoss-provisioner/interfaces"
)

const (
	// DefaultPollInterval is the fixed wait between status lookups.
	DefaultPollInterval = 30 * time.Second

	// DefaultMaxAttempts bounds the number of status lookups (20 minutes at
	// the default interval).
	DefaultMaxAttempts = 40
)

// Sleeper suspends the caller for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PollOptions configures the readiness poller.
type PollOptions struct {
	// Interval is the constant wait between lookups. Defaults to DefaultPollInterval.
	Interval time.Duration

	// MaxAttempts bounds the number of lookups. Zero polls until the
	// collection leaves CREATING or ctx is cancelled.
	MaxAttempts int

	// Sleep defaults to SleepContext.
	Sleep Sleeper
}

// DefaultPollOptions returns the bounded defaults.
func DefaultPollOptions() PollOptions {
	return PollOptions{Interval: DefaultPollInterval, MaxAttempts: DefaultMaxAttempts}
}

// Poller waits for a collection to become ACTIVE.
type Poller struct {
	cp  interfaces.ControlPlane
	log *slog.Logger
}

// NewPoller creates a poller backed by cp.
func NewPoller(cp interfaces.ControlPlane, log *slog.Logger) *Poller {
	return &Poller{cp: cp, log: log}
}

// WaitUntilActive looks up the collection and, while it is CREATING, waits
// one fixed interval and looks again. It returns the ACTIVE status, which
// always carries an endpoint.
//
// FAILED, DELETING and unknown states end the wait with an error, as do
// lookup errors, an exhausted attempt budget and ctx cancellation.
func (p *Poller) WaitUntilActive(ctx context.Context, name string, opts PollOptions) (*interfaces.CollectionStatus, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	log := p.log.With(slog.String("collection", name))
	start := time.Now()

	for attempt := 1; ; attempt++ {
		status, err := lookupCollection(ctx, p.cp, name)
		if err != nil {
			return nil, err
		}

		switch status.State {
		case interfaces.CollectionActive:
			if status.Endpoint == "" {
				return nil, fmt.Errorf("%w: %q", interfaces.ErrMissingEndpoint, name)
			}
			log.Info("Collection successfully created",
				slog.String("id", status.ID),
				slog.String("endpoint", status.Endpoint),
				slog.String("dashboard", status.DashboardEndpoint),
				slog.Int("lookups", attempt),
				slog.Duration("waited", time.Since(start)))
			return status, nil

		case interfaces.CollectionCreating:
			if opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts {
				log.Error("Collection still creating after poll limit", slog.Int("lookups", attempt))
				return nil, fmt.Errorf("%w: %q after %d lookups", interfaces.ErrPollLimitReached, name, attempt)
			}
			log.Info("Creating collection...",
				slog.Int("lookup", attempt),
				slog.Duration("next_poll_in", interval))
			if err := sleep(ctx, interval); err != nil {
				return nil, fmt.Errorf("waiting for collection %q: %w", name, err)
			}

		case interfaces.CollectionFailed:
			log.Error("Collection creation failed",
				slog.String("failure_code", status.FailureCode),
				slog.String("failure_message", status.FailureMessage))
			return nil, fmt.Errorf("%w: %q: %s %s", interfaces.ErrCollectionFailed, name, status.FailureCode, status.FailureMessage)

		default:
			log.Error("Collection is in a state it cannot become active from", slog.String("state", string(status.State)))
			return nil, fmt.Errorf("%w: %q is %s", interfaces.ErrUnexpectedCollectionState, name, status.State)
		}
	}
}
