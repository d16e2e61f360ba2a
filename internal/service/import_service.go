package service

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/importer"
	"github.com/sibarconnect/inbox-service/internal/repository"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// ImportService loads WhatsApp chat exports into a conversation, keeping the
// exported timestamps.
type ImportService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	logger   *zap.Logger
}

// ImportDependencies bundles repositories for the import service.
type ImportDependencies struct {
	ChatRepo    repository.ChatRepository
	MessageRepo repository.MessageRepository
	Logger      *zap.Logger
}

// NewImportService constructs the service.
func NewImportService(deps ImportDependencies) *ImportService {
	return &ImportService{
		chats:    deps.ChatRepo,
		messages: deps.MessageRepo,
		logger:   deps.Logger,
	}
}

// ImportExport parses an exported conversation and appends its messages to
// the chat for phoneNumber, creating the chat when needed. Messages whose
// sender matches customerName are recorded as incoming; everything else as
// outgoing. Returns the chat and how many messages were stored.
func (s *ImportService) ImportExport(ctx context.Context, companyID int64, phoneNumber, customerName string, export io.Reader) (*domain.Chat, int, error) {
	if phoneNumber == "" {
		return nil, 0, apperrors.NewValidationError("phone number is required", nil)
	}
	if customerName == "" {
		return nil, 0, apperrors.NewValidationError("customer name is required", nil)
	}

	parsed, err := importer.ParseExport(export)
	if err != nil {
		return nil, 0, apperrors.NewValidationError("could not parse export file", map[string]any{"error": err.Error()})
	}
	if len(parsed) == 0 {
		return nil, 0, apperrors.NewValidationError("export contains no messages", nil)
	}

	chat, err := s.chats.GetOrCreate(ctx, companyID, phoneNumber, &customerName)
	if err != nil {
		return nil, 0, err
	}

	imported := 0
	for _, pm := range parsed {
		body := pm.Body
		if body == "" {
			body = placeholderFor(pm.Type, pm.MediaFile)
		}

		direction := domain.DirectionOutgoing
		if strings.EqualFold(strings.TrimSpace(pm.Sender), strings.TrimSpace(customerName)) {
			direction = domain.DirectionIncoming
		}

		sender := pm.Sender
		msg := &domain.Message{
			ChatID:      chat.ID,
			Content:     body,
			MessageType: pm.Type,
			Direction:   direction,
			SenderName:  &sender,
			Status:      domain.DeliveryDelivered,
			CreatedAt:   pm.Timestamp,
		}
		if err := s.messages.Create(ctx, msg); err != nil {
			s.logger.Warn("skipping unimportable message",
				zap.Int64("chat_id", chat.ID),
				zap.Time("timestamp", pm.Timestamp),
				zap.Error(err))
			continue
		}
		imported++
	}

	return chat, imported, nil
}
