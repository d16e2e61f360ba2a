package domain

import "time"

// ChatPin marks a chat as manually prioritized by one user. Presence of the
// row is the pinned state.
type ChatPin struct {
	ID        int64
	ChatID    int64
	UserID    int64
	CreatedAt time.Time
}

// ChatSnooze hides a chat from a user's default inbox until UntilAt. One row
// per (chat, user), upserted.
type ChatSnooze struct {
	ID        int64
	ChatID    int64
	UserID    int64
	UntilAt   time.Time
	CreatedAt time.Time
}
