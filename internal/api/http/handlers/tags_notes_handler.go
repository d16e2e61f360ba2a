package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sibarconnect/inbox-service/internal/api/dto"
	"github.com/sibarconnect/inbox-service/internal/auth"
	"github.com/sibarconnect/inbox-service/internal/service"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// TagsNotesHandler exposes company tags, per-chat tag assignment, agent
// notes and the audit trail.
type TagsNotesHandler struct {
	service *service.ChatService
}

// NewTagsNotesHandler constructs handler.
func NewTagsNotesHandler(chatService *service.ChatService) *TagsNotesHandler {
	return &TagsNotesHandler{service: chatService}
}

// ListTags GET /tags.
func (h *TagsNotesHandler) ListTags(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	tags, err := h.service.ListTags(c.UserContext(), principal.CompanyID)
	if err != nil {
		return err
	}
	items := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		items = append(items, tagResponse(&tags[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTag POST /tags.
func (h *TagsNotesHandler) CreateTag(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	tag, err := h.service.CreateTag(c.UserContext(), principal.CompanyID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": tagResponse(tag)})
}

// DeleteTag DELETE /tags/:id.
func (h *TagsNotesHandler) DeleteTag(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tagID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteTag(c.UserContext(), principal.CompanyID, tagID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetChatTags PUT /chats/:id/tags.
func (h *TagsNotesHandler) SetChatTags(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.SetChatTagsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.service.SetChatTags(c.UserContext(), principal.CompanyID, chatID, req.TagIDs); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListChatTags GET /chats/:id/tags.
func (h *TagsNotesHandler) ListChatTags(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ids, err := h.service.ListChatTagIDs(c.UserContext(), principal.CompanyID, chatID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ids})
}

// AddNote POST /chats/:id/notes.
func (h *TagsNotesHandler) AddNote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	note, err := h.service.AddNote(c.UserContext(), principal.CompanyID, chatID, principal.UserID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": noteResponse(note)})
}

// ListNotes GET /chats/:id/notes.
func (h *TagsNotesHandler) ListNotes(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	notes, err := h.service.ListNotes(c.UserContext(), principal.CompanyID, chatID)
	if err != nil {
		return err
	}
	items := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, noteResponse(&notes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListAudit GET /chats/:id/audit.
func (h *TagsNotesHandler) ListAudit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.service.ListAudit(c.UserContext(), principal.CompanyID, chatID, c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, auditResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
