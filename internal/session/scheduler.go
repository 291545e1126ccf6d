package session

import (
	"context"
	"time"
)

// Scheduler runs fn every interval until the returned cancel function is called.
//
// Cancel must be idempotent and safe to call from inside fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs each task on its own goroutine driven by a [time.Ticker].
type TickerScheduler struct {
	ctx context.Context
}

// NewTickerScheduler returns a scheduler whose tasks also stop when ctx is done.
func NewTickerScheduler(ctx context.Context) *TickerScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &TickerScheduler{ctx: ctx}
}

// Every starts a ticker goroutine for fn.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ctx, cancel := context.WithCancel(s.ctx)
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// a tick may race with cancel; prefer stopping
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()

	return cancel
}
