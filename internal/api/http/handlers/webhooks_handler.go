package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/api/dto"
	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/persistence"
	"github.com/sibarconnect/inbox-service/internal/repository"
	"github.com/sibarconnect/inbox-service/internal/service"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

const (
	eventInboundMessage = "whatsapp.inbound_message.received"
	eventMessageUpdated = "whatsapp.message.updated"

	webhookDedupTTL = 24 * time.Hour
)

// WebhooksHandler ingests provider callbacks. It is unauthenticated: the
// tenant is resolved from the receiving WhatsApp number, never from the
// payload's claims.
type WebhooksHandler struct {
	messages  *service.MessageService
	companies repository.CompanyRepository
	redis     *persistence.Redis
	logger    *zap.Logger
}

// NewWebhooksHandler constructs handler.
func NewWebhooksHandler(messages *service.MessageService, companies repository.CompanyRepository, redis *persistence.Redis, logger *zap.Logger) *WebhooksHandler {
	return &WebhooksHandler{messages: messages, companies: companies, redis: redis, logger: logger}
}

// HandleYCloud POST /webhooks/ycloud. Unknown event types and unmatched
// numbers are acknowledged with 200 so the provider stops retrying them.
func (h *WebhooksHandler) HandleYCloud(c *fiber.Ctx) error {
	var event dto.YCloudEvent
	if err := c.BodyParser(&event); err != nil {
		return apperrors.NewValidationError("invalid webhook payload", nil)
	}

	if event.ID != "" && !h.redis.FirstSeen(c.UserContext(), "webhook:ycloud:"+event.ID, webhookDedupTTL) {
		return c.JSON(fiber.Map{"status": "duplicate"})
	}

	switch event.Type {
	case eventInboundMessage:
		return h.handleInbound(c, event.WhatsAppInboundMessage)
	case eventMessageUpdated:
		return h.handleStatusUpdate(c, event.WhatsAppMessage)
	default:
		h.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return c.JSON(fiber.Map{"status": "ignored"})
	}
}

func (h *WebhooksHandler) handleInbound(c *fiber.Ctx, inbound *dto.YCloudInboundMessage) error {
	if inbound == nil || inbound.From == "" {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	company, err := h.companyForNumber(c, inbound.To)
	if err != nil {
		if err == pgx.ErrNoRows {
			h.logger.Warn("inbound message for unknown number", zap.String("to", inbound.To))
			return c.JSON(fiber.Map{"status": "ignored"})
		}
		return err
	}

	input := inboundInput(inbound)
	if _, err := h.messages.RecordInbound(c.UserContext(), company.ID, input); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *WebhooksHandler) handleStatusUpdate(c *fiber.Ctx, status *dto.YCloudMessageStatus) error {
	if status == nil || status.ID == "" {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	mapped, ok := deliveryStatus(status.Status)
	if !ok {
		return c.JSON(fiber.Map{"status": "ignored"})
	}
	if err := h.messages.UpdateDeliveryStatus(c.UserContext(), status.ID, mapped); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// companyForNumber tolerates stored numbers with or without the plus prefix.
func (h *WebhooksHandler) companyForNumber(c *fiber.Ctx, number string) (*domain.Company, error) {
	company, err := h.companies.GetByWhatsAppNumber(c.UserContext(), number)
	if err != pgx.ErrNoRows {
		return company, err
	}
	var alt string
	if strings.HasPrefix(number, "+") {
		alt = strings.TrimPrefix(number, "+")
	} else {
		alt = "+" + number
	}
	return h.companies.GetByWhatsAppNumber(c.UserContext(), alt)
}

// inboundInput flattens the per-type payload variants into one input.
func inboundInput(inbound *dto.YCloudInboundMessage) service.InboundInput {
	input := service.InboundInput{
		From:              inbound.From,
		ProviderMessageID: nonEmpty(inbound.ID),
		WAMID:             nonEmpty(inbound.WAMID),
		Type:              domain.MessageTypeText,
	}
	if inbound.CustomerProfile != nil && inbound.CustomerProfile.Name != "" {
		input.CustomerName = &inbound.CustomerProfile.Name
	}

	var media *dto.YCloudMedia
	switch inbound.Type {
	case "image":
		input.Type, media = domain.MessageTypeImage, inbound.Image
	case "video":
		input.Type, media = domain.MessageTypeVideo, inbound.Video
	case "audio":
		input.Type, media = domain.MessageTypeAudio, inbound.Audio
	case "document":
		input.Type, media = domain.MessageTypeDocument, inbound.Document
	case "sticker":
		input.Type, media = domain.MessageTypeSticker, inbound.Sticker
	default:
		if inbound.Text != nil {
			input.Body = inbound.Text.Body
		}
		return input
	}

	if media != nil {
		input.MediaURL = nonEmpty(media.Link)
		input.Body = media.Caption
		if input.Body == "" && input.Type == domain.MessageTypeDocument && media.Filename != "" {
			input.Body = "[Documento: " + media.Filename + "]"
		}
	}
	return input
}

func deliveryStatus(s string) (domain.DeliveryStatus, bool) {
	switch s {
	case "sent":
		return domain.DeliverySent, true
	case "delivered":
		return domain.DeliveryDelivered, true
	case "read":
		return domain.DeliveryRead, true
	case "failed", "undelivered":
		return domain.DeliveryFailed, true
	}
	return "", false
}

func nonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
