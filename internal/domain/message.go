package domain

import "time"

// MessageType differentiates message content kinds.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeVideo    MessageType = "video"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeDocument MessageType = "document"
	MessageTypeTemplate MessageType = "template"
	MessageTypeSticker  MessageType = "sticker"
)

// MessageDirection indicates who originated the message.
type MessageDirection string

const (
	DirectionIncoming MessageDirection = "incoming"
	DirectionOutgoing MessageDirection = "outgoing"
)

// DeliveryStatus tracks provider delivery state for a message.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Message belongs to exactly one chat. Immutable once written except for
// provider-driven delivery status updates.
type Message struct {
	ID                int64
	ChatID            int64
	Content           string
	MessageType       MessageType
	Direction         MessageDirection
	SenderName        *string
	UserID            *int64
	ProviderMessageID *string
	WAMID             *string
	Status            DeliveryStatus
	AttachmentURL     *string
	CreatedAt         time.Time
}

// ValidMessageType reports whether t is a known message type.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeAudio,
		MessageTypeDocument, MessageTypeTemplate, MessageTypeSticker:
		return true
	}
	return false
}

// ValidDeliveryStatus reports whether s is a known delivery status.
func ValidDeliveryStatus(s DeliveryStatus) bool {
	switch s {
	case DeliverySent, DeliveryDelivered, DeliveryRead, DeliveryFailed:
		return true
	}
	return false
}
