package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"jobchat-client/internal/models"
	"jobchat-client/internal/observability"
)

// Client talks to the job-marketplace backend over REST. The backend is the
// single source of truth; every method fetches or writes current state and
// nothing is cached here.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a backend client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ ChatAPI = (*Client)(nil)
var _ MessageAPI = (*Client)(nil)
var _ PresenceAPI = (*Client)(nil)
var _ ProfileAPI = (*Client)(nil)

// ListChats returns the conversations visible to the user, in backend order.
func (c *Client) ListChats(ctx context.Context, userID int) ([]models.Chat, error) {
	var resp struct {
		Data []models.Chat `json:"data"`
	}
	params := url.Values{"user_id": {strconv.Itoa(userID)}}
	if err := c.getJSON(ctx, "/get-chats", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetChatRoom looks up an existing conversation between two users. The
// backend signals a miss with an error marker in the body, not a 404.
func (c *Client) GetChatRoom(ctx context.Context, sender, receiver int) (models.Chat, error) {
	var resp struct {
		models.Chat
		Error string `json:"error"`
	}
	params := url.Values{
		"sender":   {strconv.Itoa(sender)},
		"receiver": {strconv.Itoa(receiver)},
	}
	if err := c.getJSON(ctx, "/chat-room", params, &resp); err != nil {
		return models.Chat{}, err
	}
	if resp.Error != "" || resp.ChatID == 0 {
		return models.Chat{}, ErrChatNotFound
	}
	return resp.Chat, nil
}

// CreateChatRoom creates a conversation and returns its identity. The
// misspelled "reciever" field is the backend's contract.
func (c *Client) CreateChatRoom(ctx context.Context, sender, receiver int) (models.Chat, error) {
	payload := map[string]int{
		"sender":   sender,
		"reciever": receiver,
	}
	var chat models.Chat
	if err := c.postJSON(ctx, "/chat-room", payload, &chat); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// GetMessages returns the full message history for a chat.
func (c *Client) GetMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	var resp struct {
		Data []models.Message `json:"data"`
	}
	params := url.Values{"chat_id": {strconv.Itoa(chatID)}}
	if err := c.getJSON(ctx, "/message", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// PostMessage persists one message. The backend reports acceptance in the
// body rather than the status code.
func (c *Client) PostMessage(ctx context.Context, chatID, sender int, text string) error {
	payload := map[string]any{
		"chat_id":      chatID,
		"message_text": text,
		"sender":       sender,
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.postJSON(ctx, "/message", payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return ErrSendRejected
	}
	return nil
}

// ActiveStatus reads the counterpart's presence flag.
func (c *Client) ActiveStatus(ctx context.Context, userID int) (string, error) {
	var resp struct {
		ChatStatus string `json:"chat_status"`
	}
	params := url.Values{"user_id": {strconv.Itoa(userID)}}
	if err := c.getJSON(ctx, "/chat-active-status", params, &resp); err != nil {
		return "", err
	}
	return resp.ChatStatus, nil
}

// SetActiveStatus writes the local user's presence flag.
func (c *Client) SetActiveStatus(ctx context.Context, userID int, status string) error {
	payload := map[string]any{
		"user_id": userID,
		"status":  status,
	}
	return c.postJSON(ctx, "/chat-active-status", payload, nil)
}

// Introduction fetches the user's display name.
func (c *Client) Introduction(ctx context.Context, userID int) (models.Profile, error) {
	var resp struct {
		Data models.Profile `json:"data"`
	}
	params := url.Values{"user_id": {strconv.Itoa(userID)}}
	if err := c.getJSON(ctx, "/user-introduction", params, &resp); err != nil {
		return models.Profile{}, err
	}
	return resp.Data, nil
}

// CompanyDetail fetches the employer's company logo.
func (c *Client) CompanyDetail(ctx context.Context, userID int) (models.Profile, error) {
	var resp struct {
		Data models.Profile `json:"data"`
	}
	params := url.Values{"user_id": {strconv.Itoa(userID)}}
	if err := c.getJSON(ctx, "/company-detail", params, &resp); err != nil {
		return models.Profile{}, err
	}
	return resp.Data, nil
}

// FCMToken looks up the push token registered for a user.
func (c *Client) FCMToken(ctx context.Context, userID int) (string, error) {
	var resp struct {
		Data struct {
			FCMToken string `json:"fcm_token"`
		} `json:"data"`
	}
	params := url.Values{"user_id": {strconv.Itoa(userID)}}
	if err := c.getJSON(ctx, "/get_fcm_token", params, &resp); err != nil {
		return "", err
	}
	if resp.Data.FCMToken == "" {
		return "", ErrNoFCMToken
	}
	return resp.Data.FCMToken, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, route string, out any) error {
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.ObserveBackendRequest(req.Method, route, 0, time.Since(start))
		return fmt.Errorf("%s %s: %w", req.Method, route, err)
	}
	defer resp.Body.Close()
	observability.ObserveBackendRequest(req.Method, route, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, route, resp.StatusCode)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, route, err)
	}
	return nil
}
