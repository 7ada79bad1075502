// Package scheduler runs a step forever on a fixed cadence, compensating for
// the time the step itself takes.
package scheduler

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultInterval is used when a non-positive interval is configured.
const DefaultInterval = 5 * time.Second

// Clock is the subset of clock.Clock the scheduler needs.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// Step is one unit of periodic work. A returned error stops the scheduler.
type Step func(ctx context.Context) error

// Scheduler invokes a Step repeatedly so that the average spacing between
// step starts converges to the configured interval.
type Scheduler struct {
	interval time.Duration
	clock    Clock
}

// New creates a Scheduler. If interval is not positive, DefaultInterval is
// used; if clk is nil, the wall clock is used.
func New(interval time.Duration, clk Clock) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{interval: interval, clock: clk}
}

// Interval returns the target spacing between step starts.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run executes step immediately and then once per interval until step fails
// or ctx is cancelled. The first step error is returned unchanged; there are no
// retries. Cancellation returns nil.
//
// After each step the gap since the previous step started is measured and
// passed to NextSleep. For the first step the previous start is the step's
// own start.
func (s *Scheduler) Run(ctx context.Context, step Step) error {
	prevStart := s.clock.Now()

	for {
		start := s.clock.Now()
		if err := step(ctx); err != nil {
			return err
		}
		elapsed := s.clock.Now().Sub(prevStart)
		prevStart = start

		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(NextSleep(s.interval, elapsed)):
		}
	}
}

// NextSleep returns how long to wait before the next step, given the time
// elapsed since the previous step started (step runtime included).
//
// A short gap (under half the interval) sleeps the nominal interval. Otherwise
// the sleep is 2*interval - elapsed, floored at zero, which makes each gap
// between step starts the complement of the one before it:
//
//	gap(n) + gap(n-1) = 2 * interval
//
// so the long-run average spacing equals the interval and an overrun in one
// tick is paid back in the next instead of accumulating.
func NextSleep(interval, elapsed time.Duration) time.Duration {
	if elapsed < interval/2 {
		return interval
	}
	if d := 2*interval - elapsed; d > 0 {
		return d
	}
	return 0
}
