package rest

import (
	"context"
	"errors"

	"jobchat-client/internal/models"
)

var (
	// ErrChatNotFound means the backend answered a chat-room lookup with its
	// error marker instead of a conversation.
	ErrChatNotFound = errors.New("chat room not found")

	// ErrSendRejected means the backend accepted the request but did not
	// confirm persistence of the message.
	ErrSendRejected = errors.New("message not accepted by backend")

	// ErrNoFCMToken means the counterpart has no registered push token.
	ErrNoFCMToken = errors.New("no fcm token for user")
)

// ChatAPI covers conversation listing and resolution.
type ChatAPI interface {
	ListChats(ctx context.Context, userID int) ([]models.Chat, error)
	GetChatRoom(ctx context.Context, sender, receiver int) (models.Chat, error)
	CreateChatRoom(ctx context.Context, sender, receiver int) (models.Chat, error)
}

// MessageAPI covers message history and sends.
type MessageAPI interface {
	GetMessages(ctx context.Context, chatID int) ([]models.Message, error)
	PostMessage(ctx context.Context, chatID, sender int, text string) error
}

// PresenceAPI covers the per-user active-status flag.
type PresenceAPI interface {
	ActiveStatus(ctx context.Context, userID int) (string, error)
	SetActiveStatus(ctx context.Context, userID int, status string) error
}

// ProfileAPI covers the display details fetched per counterpart.
type ProfileAPI interface {
	Introduction(ctx context.Context, userID int) (models.Profile, error)
	CompanyDetail(ctx context.Context, userID int) (models.Profile, error)
	FCMToken(ctx context.Context, userID int) (string, error)
}

// ResolveChatRoom looks up the conversation between sender and receiver,
// creating it when the backend reports none. The backend keys conversations
// on the unordered user pair, so either direction resolves to one chat_id.
func ResolveChatRoom(ctx context.Context, api ChatAPI, sender, receiver int) (models.Chat, error) {
	chat, err := api.GetChatRoom(ctx, sender, receiver)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, ErrChatNotFound) {
		return models.Chat{}, err
	}
	return api.CreateChatRoom(ctx, sender, receiver)
}
