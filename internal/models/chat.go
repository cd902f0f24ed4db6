package models

// Chat is a two-party conversation as returned by the backend chat list.
// The local user is implicit; OtherUser identifies the counterpart.
type Chat struct {
	ChatID        int    `json:"chat_id"`
	OtherUser     int    `json:"other_user"`
	OtherUserName string `json:"other_user_name,omitempty"`
	LastMessage   string `json:"last_message,omitempty"`
	NewMessage    bool   `json:"new_message,omitempty"`
}

// ChannelName derives the pub/sub topic for this conversation.
func (c Chat) ChannelName() string {
	return ChannelNameFor(c.ChatID)
}

// Profile carries the counterpart display details fetched for a thread view.
type Profile struct {
	FullName    string `json:"full_name,omitempty"`
	AvatarURL   string `json:"pp_url,omitempty"`
	CompanyLogo string `json:"company_logo,omitempty"`
}
