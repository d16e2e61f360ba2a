package domain

import "time"

// ChatTag is a company-scoped label that can be attached to chats.
type ChatTag struct {
	ID        int64
	CompanyID int64
	Name      string
	CreatedAt time.Time
}

// ChatNote is an append-only agent annotation on a chat.
type ChatNote struct {
	ID        int64
	CompanyID int64
	ChatID    int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}
