// Package throttle serializes sends so the aggregate segment rate of a batch
// stays under the provider account's limit.
package throttle

import (
	"context"
	"time"
)

// Gate admits one send at a time. Each admission is scheduled delay =
// segments/segmentsPerSecond after the previous one, and the caller blocks
// until its slot. A Gate belongs to a single batch invocation and is not safe
// for concurrent use.
type Gate struct {
	next  time.Time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customises a Gate.
type Option func(*Gate)

// WithClock overrides the time source and the blocking wait. Used in tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

// New returns a Gate whose first slot is relative to the time of the first
// Wait call.
func New(opts ...Option) *Gate {
	g := &Gate{
		now:   time.Now,
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Delay is the admission spacing a send of the given size requires.
func Delay(segments, segmentsPerSecond int) time.Duration {
	if segmentsPerSecond <= 0 || segments <= 0 {
		return 0
	}
	return time.Duration(float64(segments) / float64(segmentsPerSecond) * float64(time.Second))
}

// Wait blocks until the caller's admission slot and returns how long it
// waited. A non-positive segmentsPerSecond bypasses the gate. The slot is
// reserved even if ctx ends first, so later callers keep their spacing.
func (g *Gate) Wait(ctx context.Context, segments, segmentsPerSecond int) (time.Duration, error) {
	if segmentsPerSecond <= 0 {
		return 0, nil
	}

	now := g.now()
	slot := now
	if g.next.After(slot) {
		slot = g.next
	}
	slot = slot.Add(Delay(segments, segmentsPerSecond))
	g.next = slot

	wait := slot.Sub(now)
	if wait <= 0 {
		return 0, nil
	}
	if err := g.sleep(ctx, wait); err != nil {
		return 0, err
	}
	return wait, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
