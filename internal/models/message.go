package models

import (
	"fmt"
	"time"
)

// Message is one entry in a conversation's history. Messages are immutable
// and ordered by CreatedAt within their chat.
type Message struct {
	ChatID    int       `json:"chat_id,omitempty"`
	Sender    int       `json:"sender"`
	Text      string    `json:"message_text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelNameFor derives the deterministic pub/sub channel name for a chat.
func ChannelNameFor(chatID int) string {
	return fmt.Sprintf("chat_id_%d", chatID)
}

// MessageEventName is the only realtime event type this client acts on. The
// event body is never treated as data; it is a wakeup signal to re-fetch.
const MessageEventName = "message"
