package domain

import "time"

// ChatStatus enumerates conversation lifecycle states.
type ChatStatus string

const (
	ChatStatusActive  ChatStatus = "active"
	ChatStatusClosed  ChatStatus = "closed"
	ChatStatusPending ChatStatus = "pending"
)

// ChatPriority enumerates inbox urgency levels.
type ChatPriority string

const (
	ChatPriorityLow    ChatPriority = "low"
	ChatPriorityMedium ChatPriority = "medium"
	ChatPriorityHigh   ChatPriority = "high"
)

// Chat is a conversation thread between a company and one customer phone number.
// (company_id, phone_number) is unique.
type Chat struct {
	ID              int64
	CompanyID       int64
	PhoneNumber     string
	CustomerName    *string
	AssignedUserID  *int64
	Status          ChatStatus
	Priority        ChatPriority
	LastMessageTime time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// ValidChatStatus reports whether s is a known status value.
func ValidChatStatus(s ChatStatus) bool {
	switch s {
	case ChatStatusActive, ChatStatusClosed, ChatStatusPending:
		return true
	}
	return false
}

// ValidChatPriority reports whether p is a known priority value.
func ValidChatPriority(p ChatPriority) bool {
	switch p {
	case ChatPriorityLow, ChatPriorityMedium, ChatPriorityHigh:
		return true
	}
	return false
}
