package events

import (
	"time"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// Event names as delivered on the websocket frame.
const (
	EventMessageCreated = "message.created"
	EventChatUpdated    = "chat.updated"
)

// MessagePayload is the serialized message carried by both event kinds.
type MessagePayload struct {
	ID            int64     `json:"id"`
	ChatID        int64     `json:"chat_id"`
	CompanyID     int64     `json:"company_id"`
	Content       string    `json:"content"`
	MessageType   string    `json:"message_type"`
	Direction     string    `json:"direction"`
	SenderName    *string   `json:"sender_name,omitempty"`
	UserID        *int64    `json:"user_id,omitempty"`
	Status        string    `json:"status"`
	AttachmentURL *string   `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChatUpdatedPayload notifies company-level subscribers that a chat moved;
// the last message is embedded so list views can re-render without a fetch.
// It is nil, not a zero object, for chats with no messages yet.
type ChatUpdatedPayload struct {
	ChatID      int64           `json:"chat_id"`
	CompanyID   int64           `json:"company_id"`
	LastMessage *MessagePayload `json:"last_message,omitempty"`
}

// NewMessagePayload maps a stored message into its event shape. Messages do
// not carry the tenant themselves, so the owning company is passed in.
func NewMessagePayload(companyID int64, msg *domain.Message) MessagePayload {
	return MessagePayload{
		ID:            msg.ID,
		ChatID:        msg.ChatID,
		CompanyID:     companyID,
		Content:       msg.Content,
		MessageType:   string(msg.MessageType),
		Direction:     string(msg.Direction),
		SenderName:    msg.SenderName,
		UserID:        msg.UserID,
		Status:        string(msg.Status),
		AttachmentURL: msg.AttachmentURL,
		CreatedAt:     msg.CreatedAt,
	}
}
