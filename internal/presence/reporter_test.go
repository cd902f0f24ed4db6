package presence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobchat-client/internal/mocks"
	"jobchat-client/internal/session"
)

func newTestStore(t *testing.T, userID int) *session.Store {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	if userID != 0 {
		require.NoError(t, store.SetUserID(context.Background(), userID))
	}
	return store
}

func TestReporterOnlyReportsBoundaryCrossings(t *testing.T) {
	api := new(mocks.PresenceAPIMock)
	store := newTestStore(t, 42)
	reporter := NewReporter(api, store)

	api.On("SetActiveStatus", mock.Anything, 42, "N").Return(nil).Once()
	api.On("SetActiveStatus", mock.Anything, 42, "Y").Return(nil).Once()

	ctx := context.Background()
	reporter.Transition(ctx, Background)
	reporter.Transition(ctx, Background)
	reporter.Transition(ctx, Foreground)

	api.AssertExpectations(t)
}

func TestReporterSkipsWithoutStoredUser(t *testing.T) {
	api := new(mocks.PresenceAPIMock)
	store := newTestStore(t, 0)
	reporter := NewReporter(api, store)

	reporter.Transition(context.Background(), Background)

	api.AssertNotCalled(t, "SetActiveStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestReporterSwallowsNetworkFailure(t *testing.T) {
	api := new(mocks.PresenceAPIMock)
	store := newTestStore(t, 7)
	reporter := NewReporter(api, store)

	api.On("SetActiveStatus", mock.Anything, 7, "N").Return(context.DeadlineExceeded).Once()

	// Must not panic or surface the error; the transition itself succeeds.
	reporter.Transition(context.Background(), Background)

	api.AssertExpectations(t)
}

func TestReportCurrentWritesCurrentState(t *testing.T) {
	api := new(mocks.PresenceAPIMock)
	store := newTestStore(t, 9)
	reporter := NewReporter(api, store)

	api.On("SetActiveStatus", mock.Anything, 9, "Y").Return(nil).Once()
	reporter.ReportCurrent(context.Background())
	api.AssertExpectations(t)
}
