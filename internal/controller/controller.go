// Package controller implements the screen-level logic of the chat client:
// the conversation list and the single-conversation thread. Controllers own
// their view state, issue REST calls for every refresh, and treat realtime
// events purely as wakeup signals to re-fetch.
package controller

import (
	"context"
	"time"
)

// ChannelClient is the shared realtime transport as seen by a controller:
// it may add and remove its own channel subscriptions but never touches the
// underlying connection. Several controllers may subscribe the same channel;
// each receives its own cancel and its own event deliveries.
type ChannelClient interface {
	Subscribe(channelName string, onMessage func()) (cancel func())
}

const (
	loadAttempts  = 3
	loadBaseDelay = 500 * time.Millisecond
)

// withRetry runs fn up to attempts times with doubling delay. Only safe for
// idempotent fetches.
func withRetry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	var err error
	delay := base
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil || i == attempts-1 {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
