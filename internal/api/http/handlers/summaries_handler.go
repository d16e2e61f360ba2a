package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sibarconnect/inbox-service/internal/auth"
	"github.com/sibarconnect/inbox-service/internal/service"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// SummariesHandler exposes AI summary generation and retrieval.
type SummariesHandler struct {
	service *service.SummaryService
}

// NewSummariesHandler constructs handler.
func NewSummariesHandler(summaryService *service.SummaryService) *SummariesHandler {
	return &SummariesHandler{service: summaryService}
}

// Generate POST /chats/:id/summary.
func (h *SummariesHandler) Generate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.service.Generate(c.UserContext(), principal.CompanyID, chatID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": summaryResponse(summary)})
}

// Get GET /chats/:id/summary.
func (h *SummariesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chatID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.service.Get(c.UserContext(), principal.CompanyID, chatID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaryResponse(summary)})
}
