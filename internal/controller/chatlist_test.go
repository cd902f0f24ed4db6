package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobchat-client/internal/mocks"
	"jobchat-client/internal/models"
)

var _ ChannelClient = (*mocks.ChannelClientFake)(nil)

func twoChats() []models.Chat {
	return []models.Chat{
		{ChatID: 1, OtherUser: 10},
		{ChatID: 2, OtherUser: 20},
	}
}

func TestChatListFocusSubscribesEachConversationOnce(t *testing.T) {
	api := new(mocks.ChatAPIMock)
	channels := mocks.NewChannelClientFake()
	list := NewChatList(api, channels, 1, nil)

	api.On("ListChats", mock.Anything, 1).Return(twoChats(), nil)

	list.Focus(context.Background())

	require.Equal(t, 1, channels.Subscribes["chat_id_1"])
	require.Equal(t, 1, channels.Subscribes["chat_id_2"])

	// A redundant load must not duplicate subscriptions.
	require.NoError(t, list.Load(context.Background()))
	require.Equal(t, 1, channels.Subscribes["chat_id_1"])
	require.Equal(t, 1, channels.Subscribes["chat_id_2"])
}

func TestChatListRealtimeEventTriggersReload(t *testing.T) {
	api := new(mocks.ChatAPIMock)
	channels := mocks.NewChannelClientFake()
	list := NewChatList(api, channels, 1, nil)

	api.On("ListChats", mock.Anything, 1).Return(twoChats(), nil).Times(2)

	list.Focus(context.Background())
	channels.Fire("chat_id_1")

	api.AssertExpectations(t)
}

func TestChatListBlurReleasesEveryChannelExactlyOnce(t *testing.T) {
	api := new(mocks.ChatAPIMock)
	channels := mocks.NewChannelClientFake()
	list := NewChatList(api, channels, 1, nil)

	api.On("ListChats", mock.Anything, 1).Return(twoChats(), nil)

	for cycle := 0; cycle < 3; cycle++ {
		list.Focus(context.Background())
		list.Blur()
		list.Blur() // double blur must not double-release
	}

	require.Equal(t, channels.Subscribes["chat_id_1"], channels.Unsubscribes["chat_id_1"])
	require.Equal(t, channels.Subscribes["chat_id_2"], channels.Unsubscribes["chat_id_2"])
	require.Equal(t, 3, channels.Subscribes["chat_id_1"])
}

func TestChatListEventAfterBlurDoesNotReload(t *testing.T) {
	api := new(mocks.ChatAPIMock)
	channels := mocks.NewChannelClientFake()
	list := NewChatList(api, channels, 1, nil)

	api.On("ListChats", mock.Anything, 1).Return(twoChats(), nil).Once()

	list.Focus(context.Background())
	list.Blur()
	// Blur released the handlers; firing now is a no-op.
	channels.Fire("chat_id_1")

	api.AssertExpectations(t)
}

func TestChatListLoadErrorKeepsPreviousList(t *testing.T) {
	api := new(mocks.ChatAPIMock)
	channels := mocks.NewChannelClientFake()
	list := NewChatList(api, channels, 1, nil)

	api.On("ListChats", mock.Anything, 1).Return(twoChats(), nil).Once()
	require.NoError(t, list.Load(context.Background()))

	api.On("ListChats", mock.Anything, 1).Return(nil, assert.AnError).Times(loadAttempts)
	require.Error(t, list.Load(context.Background()))

	require.Len(t, list.Chats(), 2)
	api.AssertExpectations(t)
}

func TestChatListReloadPrunesDroppedConversations(t *testing.T) {
	api := new(mocks.ChatAPIMock)
	channels := mocks.NewChannelClientFake()
	list := NewChatList(api, channels, 1, nil)

	api.On("ListChats", mock.Anything, 1).Return(twoChats(), nil).Once()
	list.Focus(context.Background())
	require.True(t, channels.Subscribed("chat_id_2"))

	// A reload without chat 2 releases its channel; chat 1 keeps its
	// original subscription.
	api.On("ListChats", mock.Anything, 1).Return([]models.Chat{{ChatID: 1, OtherUser: 10}}, nil).Once()
	require.NoError(t, list.Load(context.Background()))

	require.False(t, channels.Subscribed("chat_id_2"))
	require.Equal(t, 1, channels.Unsubscribes["chat_id_2"])
	require.True(t, channels.Subscribed("chat_id_1"))
	require.Equal(t, 1, channels.Subscribes["chat_id_1"])
}

func TestChatListSubscriptionsNeverExceedLoadedConversations(t *testing.T) {
	api := new(mocks.ChatAPIMock)
	channels := mocks.NewChannelClientFake()
	list := NewChatList(api, channels, 1, nil)

	api.On("ListChats", mock.Anything, 1).Return(twoChats(), nil)
	list.Focus(context.Background())

	subscribed := 0
	for _, n := range []string{"chat_id_1", "chat_id_2", "chat_id_3"} {
		if channels.Subscribed(n) {
			subscribed++
		}
	}
	require.LessOrEqual(t, subscribed, len(list.Chats()))
	require.False(t, channels.Subscribed("chat_id_3"))
}
