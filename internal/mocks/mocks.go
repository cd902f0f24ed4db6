package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"jobchat-client/internal/models"
	"jobchat-client/internal/relay"
	"jobchat-client/internal/rest"
)

type ChatAPIMock struct {
	mock.Mock
}

func (m *ChatAPIMock) ListChats(ctx context.Context, userID int) ([]models.Chat, error) {
	args := m.Called(ctx, userID)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Error(1)
}

func (m *ChatAPIMock) GetChatRoom(ctx context.Context, sender, receiver int) (models.Chat, error) {
	args := m.Called(ctx, sender, receiver)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatAPIMock) CreateChatRoom(ctx context.Context, sender, receiver int) (models.Chat, error) {
	args := m.Called(ctx, sender, receiver)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

type MessageAPIMock struct {
	mock.Mock
}

func (m *MessageAPIMock) GetMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageAPIMock) PostMessage(ctx context.Context, chatID, sender int, text string) error {
	args := m.Called(ctx, chatID, sender, text)
	return args.Error(0)
}

type PresenceAPIMock struct {
	mock.Mock
}

func (m *PresenceAPIMock) ActiveStatus(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *PresenceAPIMock) SetActiveStatus(ctx context.Context, userID int, status string) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

type ProfileAPIMock struct {
	mock.Mock
}

func (m *ProfileAPIMock) Introduction(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileAPIMock) CompanyDetail(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileAPIMock) FCMToken(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Trigger(ctx context.Context, channelName string) error {
	args := m.Called(ctx, channelName)
	return args.Error(0)
}

func (m *NotifierMock) NotifyMessage(ctx context.Context, notification models.PushNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

var _ rest.ChatAPI = (*ChatAPIMock)(nil)
var _ rest.MessageAPI = (*MessageAPIMock)(nil)
var _ rest.PresenceAPI = (*PresenceAPIMock)(nil)
var _ rest.ProfileAPI = (*ProfileAPIMock)(nil)
var _ relay.Notifier = (*NotifierMock)(nil)
