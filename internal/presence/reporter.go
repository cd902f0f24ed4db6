package presence

import (
	"context"
	"errors"
	"log"
	"sync"

	"jobchat-client/internal/models"
	"jobchat-client/internal/observability"
	"jobchat-client/internal/rest"
	"jobchat-client/internal/session"
)

// Lifecycle states of the application process.
type State int

const (
	Foreground State = iota
	Background
)

// Reporter translates lifecycle transitions into backend presence writes.
// Only transitions that cross the foreground/background boundary produce a
// write; repeated states are ignored. Reporting is best-effort and never
// fails the transition itself.
type Reporter struct {
	api   rest.PresenceAPI
	store *session.Store

	mu    sync.Mutex
	state State
}

// NewReporter starts in the foreground state, matching a freshly launched
// process.
func NewReporter(api rest.PresenceAPI, store *session.Store) *Reporter {
	return &Reporter{api: api, store: store, state: Foreground}
}

// Transition records the next lifecycle state and reports the presence flag
// when the active/inactive boundary is crossed.
func (r *Reporter) Transition(ctx context.Context, next State) {
	r.mu.Lock()
	prev := r.state
	r.state = next
	r.mu.Unlock()

	if prev == next {
		return
	}

	status := models.PresenceInactive
	if next == Foreground {
		status = models.PresenceActive
	}
	r.report(ctx, status)
}

// ReportCurrent writes the flag for the current state without requiring a
// transition. Used once at process start and once at shutdown.
func (r *Reporter) ReportCurrent(ctx context.Context) {
	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	status := models.PresenceInactive
	if state == Foreground {
		status = models.PresenceActive
	}
	r.report(ctx, status)
}

func (r *Reporter) report(ctx context.Context, status string) {
	userID, err := r.store.UserID(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoUser) {
			log.Printf("presence: read user id: %v", err)
		}
		return
	}

	if err := r.api.SetActiveStatus(ctx, userID, status); err != nil {
		log.Printf("presence: report status=%s failed: %v", status, err)
		observability.IncPresenceReport("error")
		return
	}
	observability.IncPresenceReport(status)
}
