package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobchat-client/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 2*time.Second)
}

func TestTriggerPostsChannelName(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trigger", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "chat_id_5", payload["channel_name"])
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.Trigger(context.Background(), "chat_id_5"))
}

func TestNotifyMessagePostsPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notify/message", r.URL.Path)
		var payload models.PushNotification
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "tok-123", payload.FCMToken)
		require.Equal(t, "Recruiter", payload.SenderName)
		require.Equal(t, 9, payload.UserID)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.NotifyMessage(context.Background(), models.PushNotification{
		FCMToken:   "tok-123",
		SenderName: "Recruiter",
		UserID:     9,
		Message:    "hello",
		SenderID:   1,
	})
	require.NoError(t, err)
}

func TestRelayErrorStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	require.Error(t, client.Trigger(context.Background(), "chat_id_5"))
}
