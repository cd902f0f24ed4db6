package models

// Presence flags as stored by the backend. Any value other than "Y" renders
// as offline.
const (
	PresenceActive   = "Y"
	PresenceInactive = "N"
)

// PushNotification is the payload handed to the notification relay for a
// best-effort push to the counterpart's device.
type PushNotification struct {
	FCMToken   string `json:"fcm_token"`
	SenderName string `json:"sender_name"`
	UserID     int    `json:"user_id"`
	Message    string `json:"message"`
	SenderID   int    `json:"sender_id"`
}
