package domain

import "time"

// Appointment is a scheduled meeting attached to a chat. No two appointments
// may share (company_id, assigned_user_id, start_at).
type Appointment struct {
	ID             int64
	CompanyID      int64
	ChatID         int64
	AssignedUserID int64
	StartAt        time.Time
	CreatedAt      time.Time
}
