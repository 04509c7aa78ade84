package ratelimit

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
)

// FixedWindow throttles with the shape the Movidesk API expects: after every
// `limit` requests, block for the full window, then start counting again. No
// smoothing, no token bucket.
type FixedWindow struct {
	limit  int
	window time.Duration
	count  int
	logger ectologger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewFixedWindow(limit int, window time.Duration, logger ectologger.Logger) *FixedWindow {
	return &FixedWindow{
		limit:  limit,
		window: window,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Wait blocks when the window is exhausted. Call it before every request.
// Every call consumes a slot, so a failed fetch still counts against the
// window and can only make the pause come sooner, never later.
func (l *FixedWindow) Wait(ctx context.Context) error {
	if l.limit > 0 && l.count >= l.limit {
		l.logger.WithContext(ctx).Infof("request limit of %d reached, waiting %s", l.limit, l.window)
		if err := l.sleep(ctx, l.window); err != nil {
			return err
		}
		l.count = 0
	}

	l.count++
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
