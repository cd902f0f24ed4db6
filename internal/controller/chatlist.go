package controller

import (
	"context"
	"log"
	"sync"

	"jobchat-client/internal/models"
	"jobchat-client/internal/rest"
)

// ChatList drives the conversation-list screen. While focused it keeps one
// realtime subscription per loaded conversation; a message event on any of
// them re-fetches the whole list.
type ChatList struct {
	api      rest.ChatAPI
	channels ChannelClient
	userID   int
	onUpdate func([]models.Chat)

	mu      sync.Mutex
	chats   []models.Chat
	owned   map[string]func()
	focused bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewChatList builds the controller for one user's conversation list.
// onUpdate fires after every successful load; it may be nil.
func NewChatList(api rest.ChatAPI, channels ChannelClient, userID int, onUpdate func([]models.Chat)) *ChatList {
	return &ChatList{
		api:      api,
		channels: channels,
		userID:   userID,
		onUpdate: onUpdate,
		owned:    make(map[string]func()),
	}
}

// Load fetches the conversation list. On failure the previous list is kept.
// While the screen is focused, a successful load also ensures a realtime
// subscription exists for each conversation.
func (c *ChatList) Load(ctx context.Context) error {
	var chats []models.Chat
	err := withRetry(ctx, loadAttempts, loadBaseDelay, func() error {
		var loadErr error
		chats, loadErr = c.api.ListChats(ctx, c.userID)
		return loadErr
	})
	if err != nil {
		log.Printf("chatlist: load user=%d failed: %v", c.userID, err)
		return err
	}

	c.mu.Lock()
	c.chats = chats
	focused := c.focused
	c.mu.Unlock()

	if focused {
		c.subscribeLoaded()
	}
	if c.onUpdate != nil {
		c.onUpdate(chats)
	}
	return nil
}

// Chats returns the last successfully loaded conversation list.
func (c *ChatList) Chats() []models.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Chat, len(c.chats))
	copy(out, c.chats)
	return out
}

// Focus marks the screen visible, refreshes the list and subscribes the
// loaded conversations. Requests triggered by realtime events are scoped to
// the focus lifetime.
func (c *ChatList) Focus(ctx context.Context) {
	c.mu.Lock()
	if c.focused {
		c.mu.Unlock()
		return
	}
	c.focused = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	if err := c.Load(c.ctx); err == nil {
		return
	}
	// Load failed; any previously loaded conversations still get their
	// subscriptions so the next event can repair the view.
	c.subscribeLoaded()
}

// Blur marks the screen hidden, cancels in-flight work and releases every
// owned subscription exactly once.
func (c *ChatList) Blur() {
	c.mu.Lock()
	if !c.focused {
		c.mu.Unlock()
		return
	}
	c.focused = false
	cancel := c.cancel
	c.cancel = nil
	owned := c.owned
	c.owned = make(map[string]func())
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, release := range owned {
		if release != nil {
			release()
		}
	}
}

// subscribeLoaded reconciles the owned subscriptions with the loaded list:
// conversations that dropped off the list are released, new ones are
// subscribed, and channels already owned are left alone. The owned set never
// grows beyond the loaded list.
func (c *ChatList) subscribeLoaded() {
	c.mu.Lock()
	if !c.focused {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx

	loaded := make(map[string]struct{}, len(c.chats))
	for _, chat := range c.chats {
		loaded[chat.ChannelName()] = struct{}{}
	}

	var stale []func()
	for name, release := range c.owned {
		if _, ok := loaded[name]; !ok {
			if release != nil {
				stale = append(stale, release)
			}
			delete(c.owned, name)
		}
	}

	var missing []string
	for name := range loaded {
		if _, ok := c.owned[name]; !ok {
			c.owned[name] = nil
			missing = append(missing, name)
		}
	}
	c.mu.Unlock()

	for _, release := range stale {
		release()
	}

	for _, name := range missing {
		release := c.channels.Subscribe(name, func() {
			c.refresh(ctx)
		})
		c.mu.Lock()
		if _, ok := c.owned[name]; ok && c.focused {
			c.owned[name] = release
			c.mu.Unlock()
			continue
		}
		// Blurred (or reconciled away) while subscribing.
		c.mu.Unlock()
		release()
	}
}

// refresh re-loads the list in response to a realtime event. The event body
// is never inspected; the backend is the source of truth.
func (c *ChatList) refresh(ctx context.Context) {
	c.mu.Lock()
	focused := c.focused
	c.mu.Unlock()
	if !focused || ctx.Err() != nil {
		return
	}
	if err := c.Load(ctx); err != nil {
		log.Printf("chatlist: refresh failed: %v", err)
	}
}
