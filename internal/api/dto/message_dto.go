package dto

import (
	"time"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// MessageResponse is the wire shape of a message.
type MessageResponse struct {
	ID            int64                   `json:"id"`
	ChatID        int64                   `json:"chat_id"`
	Content       string                  `json:"content"`
	MessageType   domain.MessageType      `json:"message_type"`
	Direction     domain.MessageDirection `json:"direction"`
	SenderName    *string                 `json:"sender_name"`
	UserID        *int64                  `json:"user_id"`
	Status        domain.DeliveryStatus   `json:"status"`
	AttachmentURL *string                 `json:"attachment_url"`
	CreatedAt     time.Time               `json:"created_at"`
}

// SendMessageRequest payload for sending into an existing chat.
type SendMessageRequest struct {
	Type     domain.MessageType `json:"type"`
	Content  string             `json:"content"`
	MediaURL *string            `json:"media_url"`
	Filename *string            `json:"filename"`
}

// StartChatRequest opens a conversation with a free-form text message.
type StartChatRequest struct {
	PhoneNumber  string  `json:"phone_number"`
	CustomerName *string `json:"customer_name"`
	Content      string  `json:"content"`
}

// StartTemplateRequest opens a conversation with an approved template.
type StartTemplateRequest struct {
	PhoneNumber  string   `json:"phone_number"`
	CustomerName *string  `json:"customer_name"`
	TemplateName string   `json:"template_name"`
	LanguageCode string   `json:"language_code"`
	Parameters   []string `json:"parameters"`
}

// ImportChatRequest loads a WhatsApp export into a conversation. The export
// file travels as a multipart upload next to these fields.
type ImportChatRequest struct {
	PhoneNumber  string `json:"phone_number"`
	CustomerName string `json:"customer_name"`
}

// ImportChatResponse reports the outcome of an import.
type ImportChatResponse struct {
	Chat     ChatResponse `json:"chat"`
	Imported int          `json:"imported"`
}
