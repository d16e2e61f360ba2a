package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sibarconnect/inbox-service/internal/api/dto"
	"github.com/sibarconnect/inbox-service/internal/auth"
	"github.com/sibarconnect/inbox-service/internal/service"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// MessagesHandler exposes message listing, outbound sends and chat imports.
type MessagesHandler struct {
	messages *service.MessageService
	imports  *service.ImportService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messages *service.MessageService, imports *service.ImportService) *MessagesHandler {
	return &MessagesHandler{messages: messages, imports: imports}
}

// ListMessages GET /chats/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	msgs, err := h.messages.ListMessages(c.UserContext(), principal.CompanyID, chatID, c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SendMessage POST /chats/:id/messages.
func (h *MessagesHandler) SendMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.messages.SendMessage(c.UserContext(), principal.CompanyID, chatID, principal.UserID, principal.Name, service.SendInput{
		Type:     req.Type,
		Content:  req.Content,
		MediaURL: req.MediaURL,
		Filename: req.Filename,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// StartChat POST /chats/start.
func (h *MessagesHandler) StartChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.StartChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	chat, msg, err := h.messages.StartChat(c.UserContext(), principal.CompanyID, principal.UserID, principal.Name,
		req.PhoneNumber, req.CustomerName, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"chat":    chatResponse(chat),
		"message": messageResponse(msg),
	}})
}

// StartTemplate POST /chats/start-template.
func (h *MessagesHandler) StartTemplate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.StartTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	chat, msg, err := h.messages.StartTemplate(c.UserContext(), principal.CompanyID, principal.UserID, principal.Name,
		req.PhoneNumber, req.CustomerName, req.TemplateName, req.LanguageCode, req.Parameters)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"chat":    chatResponse(chat),
		"message": messageResponse(msg),
	}})
}

// ImportChat POST /chats/import. Multipart: the export .txt under "file",
// plus phone_number and customer_name form fields.
func (h *MessagesHandler) ImportChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("export file is required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("could not read export file", nil)
	}
	defer file.Close()

	chat, imported, err := h.imports.ImportExport(c.UserContext(), principal.CompanyID,
		c.FormValue("phone_number"), c.FormValue("customer_name"), file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ImportChatResponse{
		Chat:     chatResponse(chat),
		Imported: imported,
	}})
}
