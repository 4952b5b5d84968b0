package app

import (
	"context"
	"time"
)

const (
	defaultPollInterval = 30 * time.Second
	retryBase           = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// calculateBackoff doubles base once per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// nextDelay is the wait before the next refresh. Healthy polls run at
// interval; after a failure the poller retries early and backs off from
// retryBase, never waiting longer than interval.
func nextDelay(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	d := calculateBackoff(failures-1, retryBase)
	if d > interval {
		return interval
	}
	return d
}

// StartPoller launches a background goroutine that refreshes the home feed.
// It returns immediately.
func StartPoller(ctx context.Context, loader FeedLoader, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if err := loader.Refresh(ctx); err != nil {
				failures++
			} else {
				failures = 0
			}
			timer.Reset(nextDelay(failures, interval))
		}
	}()
}
