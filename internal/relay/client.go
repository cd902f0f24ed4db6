package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"jobchat-client/internal/models"
	"jobchat-client/internal/observability"
)

// Notifier is the boundary to the notification relay: it publishes realtime
// wakeup triggers and delivers push notifications. Both are best-effort.
type Notifier interface {
	Trigger(ctx context.Context, channelName string) error
	NotifyMessage(ctx context.Context, notification models.PushNotification) error
}

// Client is the HTTP implementation of Notifier.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a relay client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ Notifier = (*Client)(nil)

// Trigger asks the relay to publish a "message" event on the channel so
// subscribed clients re-fetch. The event carries no authoritative payload.
func (c *Client) Trigger(ctx context.Context, channelName string) error {
	payload := map[string]string{"channel_name": channelName}
	if err := c.post(ctx, "/trigger", payload); err != nil {
		observability.IncRelayError("trigger")
		return err
	}
	return nil
}

// NotifyMessage asks the relay to deliver a push to the counterpart device.
func (c *Client) NotifyMessage(ctx context.Context, notification models.PushNotification) error {
	if err := c.post(ctx, "/notify/message", notification); err != nil {
		observability.IncRelayError("notify")
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}
