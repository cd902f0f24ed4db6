package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// ChannelClientFake is a deterministic in-memory stand-in for the realtime
// client. Like the real one it keeps a handler per subscriber on a shared
// channel and delivers events to every one of them; cancels release only
// their own handler and are idempotent. Tests can fire events and inspect
// subscribe/release counts per channel.
type ChannelClientFake struct {
	mu           sync.Mutex
	nextToken    int
	handlers     map[string]map[int]func()
	Subscribes   map[string]int
	Unsubscribes map[string]int
}

func NewChannelClientFake() *ChannelClientFake {
	return &ChannelClientFake{
		handlers:     make(map[string]map[int]func()),
		Subscribes:   make(map[string]int),
		Unsubscribes: make(map[string]int),
	}
}

func (f *ChannelClientFake) Subscribe(channelName string, onMessage func()) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Subscribes[channelName]++
	if f.handlers[channelName] == nil {
		f.handlers[channelName] = make(map[int]func())
	}
	f.nextToken++
	token := f.nextToken
	f.handlers[channelName][token] = onMessage

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.handlers[channelName][token]; !ok {
			return
		}
		delete(f.handlers[channelName], token)
		f.Unsubscribes[channelName]++
		if len(f.handlers[channelName]) == 0 {
			delete(f.handlers, channelName)
		}
	}
}

// Fire simulates a "message" event on the channel, delivering to every
// registered handler.
func (f *ChannelClientFake) Fire(channelName string) {
	f.mu.Lock()
	handlers := make([]func(), 0, len(f.handlers[channelName]))
	for _, h := range f.handlers[channelName] {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

// Subscribed reports whether any handler is currently registered.
func (f *ChannelClientFake) Subscribed(channelName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[channelName]) > 0
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
