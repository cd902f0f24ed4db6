package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"jobchat-client/internal/models"
	"jobchat-client/internal/observability"
)

// Connection states.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

// Config addresses the external pub/sub service. URL overrides the endpoint
// derived from APIKey and Cluster (useful for tests).
type Config struct {
	URL     string
	APIKey  string
	Cluster string
}

func (c Config) endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("wss://ws-%s.pusher.com/app/%s?protocol=7&client=jobchat&version=1.0", c.Cluster, c.APIKey)
}

// frame is the pub/sub wire format. Data is opaque: this client never treats
// an event body as authoritative state, it only re-fetches over REST.
type frame struct {
	Event   string `json:"event"`
	Channel string `json:"channel,omitempty"`
	Data    string `json:"data,omitempty"`
}

type subscription struct {
	handlers map[uint64]func()
}

// Client owns the single process-wide transport connection and a set of
// channel subscriptions on top of it. Several owners may subscribe the same
// channel: each keeps its own handler and a "message" event fires every one
// of them once. A channel is released when its last owner cancels, and the
// transport disconnects when the last channel is released.
type Client struct {
	cfg Config

	mu        sync.Mutex
	conn      *websocket.Conn
	state     string
	nextToken uint64
	subs      map[string]*subscription
}

// NewClient builds a disconnected client. The transport is dialed lazily on
// the first Subscribe.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:   cfg,
		state: StateDisconnected,
		subs:  make(map[string]*subscription),
	}
}

// Subscribe registers onMessage for the channel and connects the transport
// if needed. The returned cancel releases this owner's handler and is safe
// to call more than once. Failures are logged and absorbed: callers must not
// assume the subscription succeeded, they simply miss realtime refreshes
// until the next focus cycle. Only events named "message" invoke handlers.
func (c *Client) Subscribe(channelName string, onMessage func()) (cancel func()) {
	noop := func() {}
	if channelName == "" {
		log.Printf("realtime: ignoring subscribe with empty channel name")
		return noop
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subs[channelName]
	if !ok {
		if err := c.connectLocked(); err != nil {
			log.Printf("realtime: connect failed: %v", err)
			observability.IncRealtimeEvent("connect_error")
			return noop
		}
		if err := c.writeLocked(frame{Event: "pusher:subscribe", Data: channelData(channelName)}); err != nil {
			log.Printf("realtime: subscribe %s failed: %v", channelName, err)
			observability.IncRealtimeEvent("subscribe_error")
			return noop
		}
		sub = &subscription{handlers: make(map[uint64]func())}
		c.subs[channelName] = sub
	}

	c.nextToken++
	token := c.nextToken
	sub.handlers[token] = onMessage
	observability.IncRealtimeEvent("subscribe")

	return func() { c.release(channelName, token) }
}

// release drops one owner's handler. The last handler removes the channel
// subscription, and removing the last channel disconnects the transport.
// Stale tokens, including any outstanding after Close, are no-ops.
func (c *Client) release(channelName string, token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subs[channelName]
	if !ok {
		return
	}
	if _, ok := sub.handlers[token]; !ok {
		return
	}
	delete(sub.handlers, token)
	if len(sub.handlers) > 0 {
		return
	}

	delete(c.subs, channelName)
	observability.IncRealtimeEvent("unsubscribe")

	if c.conn != nil {
		if err := c.writeLocked(frame{Event: "pusher:unsubscribe", Data: channelData(channelName)}); err != nil {
			log.Printf("realtime: unsubscribe %s failed: %v", channelName, err)
		}
	}
	if len(c.subs) == 0 {
		c.teardownLocked()
	}
}

// Close tears down the transport and forgets every subscription.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = make(map[string]*subscription)
	c.teardownLocked()
}

// State reports the connection state and currently subscribed channels.
func (c *Client) State() (string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	channels := make([]string, 0, len(c.subs))
	for name := range c.subs {
		channels = append(channels, name)
	}
	return c.state, channels
}

// connectLocked dials the transport if it is down and replays subscribe
// frames for channels that survived a previous transport error.
func (c *Client) connectLocked() error {
	if c.conn != nil {
		return nil
	}

	_, span := otel.Tracer("jobchat-client/realtime").Start(context.Background(), "realtime.connect")
	defer span.End()

	c.state = StateConnecting
	conn, _, err := websocket.DefaultDialer.Dial(c.cfg.endpoint(), nil)
	if err != nil {
		c.state = StateDisconnected
		return err
	}
	c.conn = conn
	c.state = StateConnected
	observability.SetRealtimeConnected(true)

	for name := range c.subs {
		if err := c.writeLocked(frame{Event: "pusher:subscribe", Data: channelData(name)}); err != nil {
			log.Printf("realtime: resubscribe %s failed: %v", name, err)
		}
	}

	go c.readLoop(conn)
	return nil
}

func (c *Client) writeLocked(f frame) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(f)
}

// teardownLocked closes the transport. Subscriptions are left to the caller:
// release removes them, transport errors keep them for replay.
func (c *Client) teardownLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	observability.SetRealtimeConnected(false)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			c.mu.Lock()
			// A stale loop for an already-replaced conn must not tear
			// down the live one.
			if c.conn == conn {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("realtime: transport error: %v", err)
					observability.IncRealtimeEvent("transport_error")
				}
				c.teardownLocked()
			}
			c.mu.Unlock()
			return
		}
		c.dispatch(f)
	}
}

// dispatch invokes every registered handler for "message" events. Every
// other event type is protocol chatter and is dropped. Handlers run outside
// the client lock so they may subscribe and unsubscribe freely.
func (c *Client) dispatch(f frame) {
	switch f.Event {
	case "pusher:ping":
		c.mu.Lock()
		if err := c.writeLocked(frame{Event: "pusher:pong"}); err != nil {
			log.Printf("realtime: pong failed: %v", err)
		}
		c.mu.Unlock()
	case models.MessageEventName:
		c.mu.Lock()
		var handlers []func()
		if sub, ok := c.subs[f.Channel]; ok {
			handlers = make([]func(), 0, len(sub.handlers))
			for _, h := range sub.handlers {
				handlers = append(handlers, h)
			}
		}
		c.mu.Unlock()
		if len(handlers) > 0 {
			observability.IncRealtimeEvent("message")
		}
		for _, h := range handlers {
			h()
		}
	}
}

func channelData(channelName string) string {
	data, _ := json.Marshal(map[string]string{"channel": channelName})
	return string(data)
}
