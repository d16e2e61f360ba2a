package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sibarconnect/inbox-service/internal/api/dto"
	"github.com/sibarconnect/inbox-service/internal/auth"
	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/repository"
	"github.com/sibarconnect/inbox-service/internal/service"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// ChatsHandler manages inbox listing and chat lifecycle endpoints.
type ChatsHandler struct {
	service *service.ChatService
}

// NewChatsHandler constructs handler.
func NewChatsHandler(chatService *service.ChatService) *ChatsHandler {
	return &ChatsHandler{service: chatService}
}

// ListChats GET /chats.
func (h *ChatsHandler) ListChats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter, err := parseChatFilter(c, principal.UserID)
	if err != nil {
		return err
	}

	rows, err := h.service.ListChats(c.UserContext(), principal.CompanyID, filter)
	if err != nil {
		return err
	}

	items := make([]dto.ChatListItem, 0, len(rows))
	for i := range rows {
		items = append(items, chatListItem(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetChat GET /chats/:id.
func (h *ChatsHandler) GetChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	chat, err := h.service.GetChat(c.UserContext(), principal.CompanyID, chatID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(chat)})
}

// AssignChat PUT /chats/:id/assign.
func (h *ChatsHandler) AssignChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AssignChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == 0 {
		return apperrors.NewValidationError("user_id is required", nil)
	}

	chat, err := h.service.AssignChat(c.UserContext(), principal.CompanyID, chatID, principal.UserID, req.UserID, req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(chat)})
}

// SetStatus PUT /chats/:id/status.
func (h *ChatsHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	chat, err := h.service.SetStatus(c.UserContext(), principal.CompanyID, chatID, principal.UserID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatResponse(chat)})
}

// BulkUpdate POST /chats/bulk.
func (h *ChatsHandler) BulkUpdate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.BulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := repository.BulkUpdateInput{
		Status:         req.Status,
		Priority:       req.Priority,
		AssignedUserID: req.AssignedUserID,
	}
	updated, err := h.service.BulkUpdate(c.UserContext(), principal.CompanyID, principal.UserID, req.ChatIDs, input, req.TagIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BulkUpdateResponse{Updated: updated}})
}

// DeleteChat DELETE /chats/:id.
func (h *ChatsHandler) DeleteChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteChat(c.UserContext(), principal.CompanyID, chatID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PinChat POST /chats/:id/pin.
func (h *ChatsHandler) PinChat(c *fiber.Ctx) error {
	return h.togglePin(c, true)
}

// UnpinChat DELETE /chats/:id/pin.
func (h *ChatsHandler) UnpinChat(c *fiber.Ctx) error {
	return h.togglePin(c, false)
}

func (h *ChatsHandler) togglePin(c *fiber.Ctx, pin bool) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if pin {
		err = h.service.PinChat(c.UserContext(), principal.CompanyID, chatID, principal.UserID)
	} else {
		err = h.service.UnpinChat(c.UserContext(), principal.CompanyID, chatID, principal.UserID)
	}
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SnoozeChat POST /chats/:id/snooze.
func (h *ChatsHandler) SnoozeChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.SnoozeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UntilAt.IsZero() {
		return apperrors.NewValidationError("until_at is required", nil)
	}

	if err := h.service.SnoozeChat(c.UserContext(), principal.CompanyID, chatID, principal.UserID, req.UntilAt); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnsnoozeChat DELETE /chats/:id/snooze.
func (h *ChatsHandler) UnsnoozeChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.UnsnoozeChat(c.UserContext(), principal.CompanyID, chatID, principal.UserID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseChatFilter(c *fiber.Ctx, userID int64) (repository.ChatFilter, error) {
	var filter repository.ChatFilter

	if v := c.Query("status"); v != "" {
		status := domain.ChatStatus(v)
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.ChatPriority(v)
		filter.Priority = &priority
	}
	if v := c.Query("last_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid last_days", nil)
		}
		filter.LastDays = &days
	}
	if v := c.Query("has_appointment"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid has_appointment", nil)
		}
		filter.HasAppointment = &b
	}
	if v := c.Query("has_response"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid has_response", nil)
		}
		filter.HasResponse = &b
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	if v := c.Query("tag_ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return filter, apperrors.NewValidationError("invalid tag_ids", nil)
			}
			filter.TagIDs = append(filter.TagIDs, id)
		}
	}
	if c.QueryBool("exclude_snoozed", true) {
		filter.ExcludeSnoozedForUserID = &userID
	}
	if c.QueryBool("pinned_first", true) {
		filter.PinnedByUserID = &userID
	}
	return filter, nil
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"param": name})
	}
	return id, nil
}
