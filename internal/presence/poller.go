package presence

import (
	"context"
	"log"
	"sync"
	"time"

	"jobchat-client/internal/observability"
	"jobchat-client/internal/rest"
)

const (
	// DefaultPollInterval matches the staleness tolerated by the thread view.
	DefaultPollInterval = 5 * time.Second

	maxPollBackoff = 40 * time.Second
)

// Poller watches one counterpart's active-status flag. It fetches once
// immediately, then on a fixed interval for as long as its context lives.
// The context ties the timer to the owning screen: when the screen goes
// away, so does the poll, on every exit path.
type Poller struct {
	api      rest.PresenceAPI
	userID   int
	interval time.Duration
	onUpdate func(status string)

	mu   sync.Mutex
	last string
}

// NewPoller builds a poller for the counterpart userID. onUpdate fires when
// a successful fetch changes the displayed flag; it may be nil.
func NewPoller(api rest.PresenceAPI, userID int, interval time.Duration, onUpdate func(status string)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{api: api, userID: userID, interval: interval, onUpdate: onUpdate}
}

// Status returns the most recently fetched flag. On fetch failure the
// previous value is retained rather than flipping to a default.
func (p *Poller) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Run polls until ctx is cancelled. Consecutive failures back off up to a
// cap; the poll is idempotent so retrying is always safe.
func (p *Poller) Run(ctx context.Context) {
	delay := time.Duration(0)
	failures := 0

	for {
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		status, err := p.api.ActiveStatus(ctx, p.userID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			log.Printf("presence: poll user=%d failed: %v", p.userID, err)
			observability.IncPresencePoll("error")
			delay = backoff(p.interval, failures)
			continue
		}

		failures = 0
		delay = p.interval
		observability.IncPresencePoll("ok")

		p.mu.Lock()
		changed := status != p.last
		p.last = status
		p.mu.Unlock()

		if changed && p.onUpdate != nil {
			p.onUpdate(status)
		}
	}
}

func backoff(base time.Duration, failures int) time.Duration {
	d := base
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= maxPollBackoff {
			return maxPollBackoff
		}
	}
	return d
}
