package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sibarconnect/inbox-service/internal/api/dto"
	"github.com/sibarconnect/inbox-service/internal/auth"
	"github.com/sibarconnect/inbox-service/internal/service"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// AppointmentsHandler exposes scheduling endpoints.
type AppointmentsHandler struct {
	service *service.AppointmentService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointmentService *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{service: appointmentService}
}

// Create POST /appointments.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ChatID == 0 || req.UserID == 0 {
		return apperrors.NewValidationError("chat_id and user_id are required", nil)
	}

	appt, err := h.service.Create(c.UserContext(), principal.CompanyID, req.ChatID, req.UserID, req.StartAt)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Update PUT /appointments/:id.
func (h *AppointmentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == nil && req.StartAt == nil {
		return apperrors.NewValidationError("no fields to update", nil)
	}

	appt, err := h.service.Update(c.UserContext(), principal.CompanyID, id, req.UserID, req.StartAt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Delete DELETE /appointments/:id.
func (h *AppointmentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), principal.CompanyID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByChat GET /chats/:id/appointments.
func (h *AppointmentsHandler) ListByChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	appts, err := h.service.ListByChat(c.UserContext(), principal.CompanyID, chatID)
	if err != nil {
		return err
	}
	items := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		items = append(items, appointmentResponse(&appts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SuggestFreeSlots GET /appointments/free-slots.
func (h *AppointmentsHandler) SuggestFreeSlots(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	userID := int64(c.QueryInt("user_id"))
	if userID == 0 {
		return apperrors.NewValidationError("user_id is required", nil)
	}
	day, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.Local)
	if err != nil {
		return apperrors.NewValidationError("date must be YYYY-MM-DD", nil)
	}

	slots, err := h.service.SuggestFreeSlots(c.UserContext(), principal.CompanyID, userID, day,
		c.QueryInt("start_hour", 9),
		c.QueryInt("end_hour", 18),
		c.QueryInt("slot_minutes", 30),
		c.QueryInt("max_results", 5))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FreeSlotsResponse{Slots: slots}})
}
