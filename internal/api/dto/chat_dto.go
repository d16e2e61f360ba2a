package dto

import (
	"time"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// ChatResponse is the wire shape of a conversation.
type ChatResponse struct {
	ID              int64               `json:"id"`
	CompanyID       int64               `json:"company_id"`
	PhoneNumber     string              `json:"phone_number"`
	CustomerName    *string             `json:"customer_name"`
	AssignedUserID  *int64              `json:"assigned_user_id"`
	Status          domain.ChatStatus   `json:"status"`
	Priority        domain.ChatPriority `json:"priority"`
	LastMessageTime time.Time           `json:"last_message_time"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ChatListItem is one inbox row.
type ChatListItem struct {
	Chat        ChatResponse     `json:"chat"`
	LastMessage *MessageResponse `json:"last_message"`
	UnreadCount int              `json:"unread_count"`
}

// AssignChatRequest payload.
type AssignChatRequest struct {
	UserID   int64               `json:"user_id"`
	Priority domain.ChatPriority `json:"priority"`
}

// SetStatusRequest payload.
type SetStatusRequest struct {
	Status domain.ChatStatus `json:"status"`
}

// BulkUpdateRequest applies fields across many chats. Nil fields are left
// untouched; a non-nil TagIDs replaces every chat's tag set.
type BulkUpdateRequest struct {
	ChatIDs        []int64              `json:"chat_ids"`
	Status         *domain.ChatStatus   `json:"status"`
	Priority       *domain.ChatPriority `json:"priority"`
	AssignedUserID *int64               `json:"assigned_user_id"`
	TagIDs         []int64              `json:"tag_ids"`
}

// BulkUpdateResponse reports how many chats changed.
type BulkUpdateResponse struct {
	Updated int64 `json:"updated"`
}

// SnoozeRequest payload.
type SnoozeRequest struct {
	UntilAt time.Time `json:"until_at"`
}

// CreateTagRequest payload.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// TagResponse is the wire shape of a company tag.
type TagResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SetChatTagsRequest replaces a chat's tags.
type SetChatTagsRequest struct {
	TagIDs []int64 `json:"tag_ids"`
}

// CreateNoteRequest payload.
type CreateNoteRequest struct {
	Content string `json:"content"`
}

// NoteResponse is the wire shape of an agent note.
type NoteResponse struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryResponse is the wire shape of an AI chat summary.
type SummaryResponse struct {
	ChatID    int64      `json:"chat_id"`
	Summary   string     `json:"summary"`
	Interest  string     `json:"interest"`
	Model     string     `json:"model"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// AuditEntryResponse is one audit trail record.
type AuditEntryResponse struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    *int64    `json:"user_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
