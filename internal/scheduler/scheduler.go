// Package scheduler provides the explicit interval-task abstraction the
// hosting process injects into components that need a polling cadence,
// instead of components reaching for ambient global timers.
package scheduler

import (
	"context"
	"time"
)

// Task is one unit of periodic work. It must return promptly; long-running
// work belongs on a worker context.
type Task func(ctx context.Context)

// Scheduler runs tasks at a fixed period.
type Scheduler interface {
	// Every runs task once immediately and then at each period until ctx is
	// cancelled.
	Every(ctx context.Context, period time.Duration, task Task)
}

// Ticker is a Scheduler backed by time.Ticker; each scheduled task gets its
// own goroutine.
type Ticker struct{}

func NewTicker() *Ticker {
	return &Ticker{}
}

func (s *Ticker) Every(ctx context.Context, period time.Duration, task Task) {
	go func() {
		task(ctx)

		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				task(ctx)
			}
		}
	}()
}
