package service

import (
	"context"
	"errors"
	"time"

	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/repository"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// AppointmentService schedules meetings against chats with per-agent slot
// exclusivity.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	chats        repository.ChatRepository
}

// AppointmentDependencies bundles repositories for the appointment service.
type AppointmentDependencies struct {
	AppointmentRepo repository.AppointmentRepository
	ChatRepo        repository.ChatRepository
}

// NewAppointmentService constructs the service.
func NewAppointmentService(deps AppointmentDependencies) *AppointmentService {
	return &AppointmentService{
		appointments: deps.AppointmentRepo,
		chats:        deps.ChatRepo,
	}
}

// Create books a slot for an agent. The database enforces slot exclusivity,
// so two concurrent bookings for the same (agent, start) cannot both land;
// the loser gets a conflict describing the existing appointment.
func (s *AppointmentService) Create(ctx context.Context, companyID, chatID, userID int64, startAt time.Time) (*domain.Appointment, error) {
	if startAt.IsZero() {
		return nil, apperrors.NewValidationError("start_at is required", nil)
	}
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return nil, err
	}

	appt := &domain.Appointment{
		CompanyID:      companyID,
		ChatID:         chatID,
		AssignedUserID: userID,
		StartAt:        startAt,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			return nil, s.slotConflict(ctx, companyID, userID, startAt)
		}
		return nil, err
	}
	return appt, nil
}

// Update reschedules and/or reassigns an appointment. A conflicting target
// slot leaves the stored appointment untouched.
func (s *AppointmentService) Update(ctx context.Context, companyID, id int64, userID *int64, startAt *time.Time) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		appt.AssignedUserID = *userID
	}
	if startAt != nil {
		appt.StartAt = *startAt
	}

	if err := s.appointments.Update(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			return nil, s.slotConflict(ctx, companyID, appt.AssignedUserID, appt.StartAt)
		}
		return nil, err
	}
	return appt, nil
}

// ListByChat returns all appointments attached to a chat.
func (s *AppointmentService) ListByChat(ctx context.Context, companyID, chatID int64) ([]domain.Appointment, error) {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return nil, err
	}
	return s.appointments.ListByChat(ctx, companyID, chatID)
}

// Delete cancels an appointment.
func (s *AppointmentService) Delete(ctx context.Context, companyID, id int64) error {
	return s.appointments.Delete(ctx, companyID, id)
}

// SuggestFreeSlots proposes open slots for an agent on a single day within
// working hours. Slots already started and slots the agent has booked are
// excluded.
func (s *AppointmentService) SuggestFreeSlots(ctx context.Context, companyID, userID int64, day time.Time, startHour, endHour, slotMinutes, maxResults int) ([]time.Time, error) {
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil, apperrors.NewValidationError("invalid working hours", map[string]any{
			"start_hour": startHour,
			"end_hour":   endHour,
		})
	}
	if slotMinutes <= 0 {
		return nil, apperrors.NewValidationError("slot_minutes must be positive", nil)
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location())
	to := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, day.Location())
	slot := time.Duration(slotMinutes) * time.Minute

	// Fetch one slot earlier than the window so an appointment starting just
	// before it still masks the first slot it overlaps.
	booked, err := s.appointments.ListByUserBetween(ctx, companyID, userID, from.Add(-slot), to)
	if err != nil {
		return nil, err
	}
	taken := make([]time.Time, 0, len(booked))
	for _, appt := range booked {
		taken = append(taken, appt.StartAt)
	}

	return freeSlots(from, to, slot, taken, time.Now(), maxResults), nil
}

func (s *AppointmentService) slotConflict(ctx context.Context, companyID, userID int64, startAt time.Time) error {
	details := map[string]any{
		"assigned_user_id": userID,
		"start_at":         startAt,
	}
	if existing, err := s.appointments.FindBySlot(ctx, companyID, userID, startAt); err == nil {
		details["existing_appointment_id"] = existing.ID
		details["existing_chat_id"] = existing.ChatID
	}
	return apperrors.NewConflict("time slot already booked", details)
}

// freeSlots walks the window on the slot grid and keeps starts that are in
// the future and do not overlap a booked interval. Each booked start b
// occupies [b, b+slot), so an off-grid booking masks every slot it touches.
func freeSlots(from, to time.Time, slot time.Duration, taken []time.Time, now time.Time, max int) []time.Time {
	isTaken := func(t time.Time) bool {
		for _, b := range taken {
			if b.Before(t.Add(slot)) && t.Before(b.Add(slot)) {
				return true
			}
		}
		return false
	}

	var out []time.Time
	for start := from; !start.Add(slot).After(to); start = start.Add(slot) {
		if !start.After(now) {
			continue
		}
		if isTaken(start) {
			continue
		}
		out = append(out, start)
		if len(out) >= max {
			break
		}
	}
	return out
}
