package dto

import "time"

// CreateAppointmentRequest payload.
type CreateAppointmentRequest struct {
	ChatID  int64     `json:"chat_id"`
	UserID  int64     `json:"user_id"`
	StartAt time.Time `json:"start_at"`
}

// UpdateAppointmentRequest payload; nil fields are left unchanged.
type UpdateAppointmentRequest struct {
	UserID  *int64     `json:"user_id"`
	StartAt *time.Time `json:"start_at"`
}

// AppointmentResponse is the wire shape of an appointment.
type AppointmentResponse struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	StartAt   time.Time `json:"start_at"`
	CreatedAt time.Time `json:"created_at"`
}

// FreeSlotsResponse lists suggested open slots.
type FreeSlotsResponse struct {
	Slots []time.Time `json:"slots"`
}
