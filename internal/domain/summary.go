package domain

import "time"

// ChatInterest classifies customer intent detected in a conversation.
type ChatInterest string

const (
	InterestInterested    ChatInterest = "Interesado"
	InterestNotInterested ChatInterest = "No interesado"
	InterestUndecided     ChatInterest = "Indeciso"
)

// ChatSummary holds the AI-generated summary for a chat. At most one row per
// (company, chat); writes are upserts.
type ChatSummary struct {
	ID        int64
	ChatID    int64
	CompanyID int64
	Summary   string
	Interest  ChatInterest
	Provider  string
	Model     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
