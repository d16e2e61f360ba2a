package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/media"
	"github.com/sibarconnect/inbox-service/internal/provider"
	"github.com/sibarconnect/inbox-service/internal/repository"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// MessageService handles outbound sends, inbound webhook ingestion and
// message listing.
type MessageService struct {
	chats     repository.ChatRepository
	messages  repository.MessageRepository
	companies repository.CompanyRepository
	provider  provider.Client
	media     media.Storage
	publisher EventPublisher
	logger    *zap.Logger
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	ChatRepo    repository.ChatRepository
	MessageRepo repository.MessageRepository
	CompanyRepo repository.CompanyRepository
	Provider    provider.Client
	Media       media.Storage
	Publisher   EventPublisher
	Logger      *zap.Logger
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		chats:     deps.ChatRepo,
		messages:  deps.MessageRepo,
		companies: deps.CompanyRepo,
		provider:  deps.Provider,
		media:     deps.Media,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}
}

// SendInput describes an outbound message from an agent.
type SendInput struct {
	Type     domain.MessageType
	Content  string
	MediaURL *string
	Filename *string
}

// InboundInput describes a provider-delivered customer message.
type InboundInput struct {
	From              string
	CustomerName      *string
	Type              domain.MessageType
	Body              string
	MediaURL          *string
	ProviderMessageID *string
	WAMID             *string
}

// SendMessage delivers an agent message through the provider and persists it
// only after the provider accepts it, so the stored history never contains
// sends the customer could not receive.
func (s *MessageService) SendMessage(ctx context.Context, companyID, chatID, userID int64, senderName string, input SendInput) (*domain.Message, error) {
	if input.Type == "" {
		input.Type = domain.MessageTypeText
	}
	if !domain.ValidMessageType(input.Type) {
		return nil, apperrors.NewValidationError("invalid message type", map[string]any{"type": input.Type})
	}
	if input.Type == domain.MessageTypeText && input.Content == "" {
		return nil, apperrors.NewValidationError("content is required", nil)
	}

	chat, err := s.chats.GetByID(ctx, companyID, chatID)
	if err != nil {
		return nil, err
	}

	creds, err := s.credentials(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result, err := s.provider.SendMessage(ctx, creds, chat.PhoneNumber, provider.OutboundMessage{
		Type:     input.Type,
		Body:     input.Content,
		MediaURL: input.MediaURL,
		Filename: input.Filename,
	})
	if err != nil {
		return nil, err
	}

	body := input.Content
	if body == "" {
		body = placeholderFor(input.Type, valueOr(input.Filename))
	}
	msg := &domain.Message{
		ChatID:            chat.ID,
		Content:           body,
		MessageType:       input.Type,
		Direction:         domain.DirectionOutgoing,
		SenderName:        &senderName,
		UserID:            &userID,
		ProviderMessageID: optional(result.ProviderMessageID),
		WAMID:             optional(result.WAMID),
		Status:            domain.DeliverySent,
		AttachmentURL:     input.MediaURL,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.MessageCreated(companyID, msg)
	}
	return msg, nil
}

// StartChat opens (or reuses) the conversation for a phone number and sends
// a first free-form text message.
func (s *MessageService) StartChat(ctx context.Context, companyID, userID int64, senderName, phoneNumber string, customerName *string, content string) (*domain.Chat, *domain.Message, error) {
	if phoneNumber == "" {
		return nil, nil, apperrors.NewValidationError("phone number is required", nil)
	}
	if content == "" {
		return nil, nil, apperrors.NewValidationError("content is required", nil)
	}

	chat, err := s.chats.GetOrCreate(ctx, companyID, phoneNumber, customerName)
	if err != nil {
		return nil, nil, err
	}

	msg, err := s.SendMessage(ctx, companyID, chat.ID, userID, senderName, SendInput{
		Type:    domain.MessageTypeText,
		Content: content,
	})
	if err != nil {
		return nil, nil, err
	}
	return chat, msg, nil
}

// StartTemplate opens (or reuses) the conversation and sends an approved
// template, the only way to reach a customer outside the 24h session window.
func (s *MessageService) StartTemplate(ctx context.Context, companyID, userID int64, senderName, phoneNumber string, customerName *string, templateName, languageCode string, params []string) (*domain.Chat, *domain.Message, error) {
	if phoneNumber == "" {
		return nil, nil, apperrors.NewValidationError("phone number is required", nil)
	}
	if templateName == "" {
		return nil, nil, apperrors.NewValidationError("template name is required", nil)
	}

	chat, err := s.chats.GetOrCreate(ctx, companyID, phoneNumber, customerName)
	if err != nil {
		return nil, nil, err
	}

	creds, err := s.credentials(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.provider.SendTemplate(ctx, creds, chat.PhoneNumber, templateName, languageCode, params)
	if err != nil {
		return nil, nil, err
	}

	msg := &domain.Message{
		ChatID:            chat.ID,
		Content:           fmt.Sprintf("[Plantilla: %s]", templateName),
		MessageType:       domain.MessageTypeTemplate,
		Direction:         domain.DirectionOutgoing,
		SenderName:        &senderName,
		UserID:            &userID,
		ProviderMessageID: optional(result.ProviderMessageID),
		WAMID:             optional(result.WAMID),
		Status:            domain.DeliverySent,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, nil, err
	}

	if s.publisher != nil {
		s.publisher.MessageCreated(companyID, msg)
	}
	return chat, msg, nil
}

// ListMessages returns the chat's messages, newest first.
func (s *MessageService) ListMessages(ctx context.Context, companyID, chatID int64, limit int) ([]domain.Message, error) {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return nil, err
	}
	return s.messages.ListByChat(ctx, chatID, limit)
}

// RecordInbound stores a customer message delivered by the provider webhook.
// Attachments are copied into local storage; when the download fails the
// provider URL is kept so the message is never lost.
func (s *MessageService) RecordInbound(ctx context.Context, companyID int64, input InboundInput) (*domain.Message, error) {
	if input.From == "" {
		return nil, apperrors.NewValidationError("sender phone number is required", nil)
	}
	if input.Type == "" {
		input.Type = domain.MessageTypeText
	}

	chat, err := s.chats.GetOrCreate(ctx, companyID, input.From, input.CustomerName)
	if err != nil {
		return nil, err
	}

	attachmentURL := input.MediaURL
	if input.MediaURL != nil && s.media != nil {
		stored, err := s.media.Download(ctx, *input.MediaURL, companyID, chat.ID)
		if err != nil {
			s.logger.Warn("attachment download failed, keeping provider url",
				zap.Int64("chat_id", chat.ID),
				zap.Error(err))
		} else {
			attachmentURL = &stored
		}
	}

	body := input.Body
	if body == "" {
		body = placeholderFor(input.Type, "")
	}

	senderName := chat.CustomerName
	msg := &domain.Message{
		ChatID:            chat.ID,
		Content:           body,
		MessageType:       input.Type,
		Direction:         domain.DirectionIncoming,
		SenderName:        senderName,
		ProviderMessageID: input.ProviderMessageID,
		WAMID:             input.WAMID,
		Status:            domain.DeliveryDelivered,
		AttachmentURL:     attachmentURL,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.MessageCreated(companyID, msg)
	}
	return msg, nil
}

// UpdateDeliveryStatus applies a provider status callback. Unknown message
// ids are ignored: status events can outlive a deleted chat.
func (s *MessageService) UpdateDeliveryStatus(ctx context.Context, providerMessageID string, status domain.DeliveryStatus) error {
	if providerMessageID == "" || !domain.ValidDeliveryStatus(status) {
		return apperrors.NewValidationError("invalid status update", nil)
	}
	if _, err := s.messages.UpdateStatusByProviderID(ctx, providerMessageID, status); err != nil {
		if err == pgx.ErrNoRows {
			s.logger.Debug("status update for unknown message",
				zap.String("provider_message_id", providerMessageID))
			return nil
		}
		return err
	}
	return nil
}

func (s *MessageService) credentials(ctx context.Context, companyID int64) (provider.Credentials, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return provider.Credentials{}, err
	}
	if !company.HasProviderConfig() {
		return provider.Credentials{}, apperrors.NewValidationError("company has no whatsapp provider configured", nil)
	}
	return provider.Credentials{
		APIKey:     *company.ProviderAPIKey,
		FromNumber: *company.WhatsAppPhoneNumber,
	}, nil
}

// placeholderFor renders the inbox body for messages without text content.
func placeholderFor(t domain.MessageType, filename string) string {
	switch t {
	case domain.MessageTypeImage:
		return "[Imagen]"
	case domain.MessageTypeAudio:
		return "[Audio]"
	case domain.MessageTypeVideo:
		return "[Video]"
	case domain.MessageTypeSticker:
		return "[Sticker]"
	case domain.MessageTypeDocument:
		if filename != "" {
			return fmt.Sprintf("[Documento: %s]", filename)
		}
		return "[Documento]"
	}
	return ""
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func valueOr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
