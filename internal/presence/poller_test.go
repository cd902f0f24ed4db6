package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobchat-client/internal/mocks"
)

func TestPollerFetchesImmediatelyAndRepeats(t *testing.T) {
	api := new(mocks.PresenceAPIMock)
	api.On("ActiveStatus", mock.Anything, 5).Return("Y", nil)

	var mu sync.Mutex
	var updates []string
	poller := NewPoller(api, 5, 10*time.Millisecond, func(status string) {
		mu.Lock()
		updates = append(updates, status)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return poller.Status() == "Y"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"Y"}, updates, "unchanged flag must not re-fire the callback")
}

func TestPollerRetainsValueOnFailure(t *testing.T) {
	api := new(mocks.PresenceAPIMock)
	api.On("ActiveStatus", mock.Anything, 5).Return("Y", nil).Once()
	api.On("ActiveStatus", mock.Anything, 5).Return("", errors.New("backend down"))

	poller := NewPoller(api, 5, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	require.Eventually(t, func() bool {
		return poller.Status() == "Y"
	}, time.Second, 2*time.Millisecond)

	// Give the failing fetches time to happen; the flag must not flip.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, "Y", poller.Status())
}

func TestPollerStopsWhenContextAlreadyCancelled(t *testing.T) {
	api := new(mocks.PresenceAPIMock)
	api.On("ActiveStatus", mock.Anything, 5).Return("", context.Canceled).Maybe()

	poller := NewPoller(api, 5, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller kept running after cancellation")
	}
}

func TestBackoffCapsAtMax(t *testing.T) {
	base := 5 * time.Second
	require.Equal(t, base, backoff(base, 1))
	require.Equal(t, 2*base, backoff(base, 2))
	require.Equal(t, maxPollBackoff, backoff(base, 10))
}
