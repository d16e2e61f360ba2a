package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/repository"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// EventPublisher pushes realtime notifications after successful writes.
// Satisfied by events.Bridge.
type EventPublisher interface {
	MessageCreated(companyID int64, msg *domain.Message)
	ChatUpdated(companyID, chatID int64, last *domain.Message)
}

// ChatService coordinates inbox listing and chat lifecycle workflows.
type ChatService struct {
	chats     repository.ChatRepository
	messages  repository.MessageRepository
	tags      repository.TagRepository
	notes     repository.NoteRepository
	pinSnooze repository.PinSnoozeRepository
	audit     repository.AuditRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// ChatDependencies bundles repositories for the chat service.
type ChatDependencies struct {
	ChatRepo      repository.ChatRepository
	MessageRepo   repository.MessageRepository
	TagRepo       repository.TagRepository
	NoteRepo      repository.NoteRepository
	PinSnoozeRepo repository.PinSnoozeRepository
	AuditRepo     repository.AuditRepository
	Publisher     EventPublisher
	Logger        *zap.Logger
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		chats:     deps.ChatRepo,
		messages:  deps.MessageRepo,
		tags:      deps.TagRepo,
		notes:     deps.NoteRepo,
		pinSnooze: deps.PinSnoozeRepo,
		audit:     deps.AuditRepo,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}
}

// ListChats returns the filtered inbox for a company.
func (s *ChatService) ListChats(ctx context.Context, companyID int64, filter repository.ChatFilter) ([]repository.ChatWithLastMessage, error) {
	if filter.Status != nil && !domain.ValidChatStatus(*filter.Status) {
		return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": *filter.Status})
	}
	if filter.Priority != nil && !domain.ValidChatPriority(*filter.Priority) {
		return nil, apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": *filter.Priority})
	}
	if filter.LastDays != nil && *filter.LastDays <= 0 {
		return nil, apperrors.NewValidationError("last_days must be positive", nil)
	}
	return s.chats.ListWithFilter(ctx, companyID, filter)
}

// GetChat fetches a single chat scoped to the company.
func (s *ChatService) GetChat(ctx context.Context, companyID, chatID int64) (*domain.Chat, error) {
	return s.chats.GetByID(ctx, companyID, chatID)
}

// GetOrCreateChat resolves the chat for a customer phone number, creating it
// when absent. Concurrent callers for the same number converge on one row.
func (s *ChatService) GetOrCreateChat(ctx context.Context, companyID int64, phoneNumber string, customerName *string) (*domain.Chat, error) {
	if phoneNumber == "" {
		return nil, apperrors.NewValidationError("phone number is required", nil)
	}
	return s.chats.GetOrCreate(ctx, companyID, phoneNumber, customerName)
}

// AssignChat assigns the chat to a user with the given priority.
func (s *ChatService) AssignChat(ctx context.Context, companyID, chatID, actorID, assigneeID int64, priority domain.ChatPriority) (*domain.Chat, error) {
	if priority == "" {
		priority = domain.ChatPriorityMedium
	}
	if !domain.ValidChatPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	chat, err := s.chats.Assign(ctx, companyID, chatID, assigneeID, priority)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, companyID, chatID, actorID, domain.AuditActionAssign,
		fmt.Sprintf("assigned to user %d with priority %s", assigneeID, priority))
	s.notifyChatUpdated(ctx, companyID, chatID)
	return chat, nil
}

// SetStatus transitions the chat lifecycle state.
func (s *ChatService) SetStatus(ctx context.Context, companyID, chatID, actorID int64, status domain.ChatStatus) (*domain.Chat, error) {
	if !domain.ValidChatStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}

	chat, err := s.chats.SetStatus(ctx, companyID, chatID, status)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, companyID, chatID, actorID, domain.AuditActionStatus,
		fmt.Sprintf("status set to %s", status))
	s.notifyChatUpdated(ctx, companyID, chatID)
	return chat, nil
}

// BulkUpdate applies the given fields to every listed chat in one statement
// and returns how many rows changed. Tag assignment replaces each chat's full
// tag set.
func (s *ChatService) BulkUpdate(ctx context.Context, companyID, actorID int64, chatIDs []int64, input repository.BulkUpdateInput, tagIDs []int64) (int64, error) {
	if len(chatIDs) == 0 {
		return 0, apperrors.NewValidationError("chat_ids is required", nil)
	}
	if input.Status != nil && !domain.ValidChatStatus(*input.Status) {
		return 0, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}
	if input.Priority != nil && !domain.ValidChatPriority(*input.Priority) {
		return 0, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}
	if input.Status == nil && input.Priority == nil && input.AssignedUserID == nil && tagIDs == nil {
		return 0, apperrors.NewValidationError("no fields to update", nil)
	}

	var updated int64
	if input.Status != nil || input.Priority != nil || input.AssignedUserID != nil {
		var err error
		updated, err = s.chats.BulkUpdate(ctx, companyID, chatIDs, input)
		if err != nil {
			return 0, err
		}
	}
	if tagIDs != nil {
		if err := s.tags.BulkSetTags(ctx, chatIDs, tagIDs); err != nil {
			return updated, err
		}
		if updated == 0 {
			updated = int64(len(chatIDs))
		}
	}

	for _, chatID := range chatIDs {
		s.recordAudit(ctx, companyID, chatID, actorID, domain.AuditActionBulk,
			fmt.Sprintf("bulk update over %d chats", len(chatIDs)))
	}
	return updated, nil
}

// DeleteChat removes the chat and everything hanging off it.
func (s *ChatService) DeleteChat(ctx context.Context, companyID, chatID int64) error {
	return s.chats.Delete(ctx, companyID, chatID)
}

// PinChat pins the chat for the acting user. Idempotent.
func (s *ChatService) PinChat(ctx context.Context, companyID, chatID, userID int64) error {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return err
	}
	return s.pinSnooze.Pin(ctx, chatID, userID)
}

// UnpinChat removes the user's pin. Idempotent.
func (s *ChatService) UnpinChat(ctx context.Context, companyID, chatID, userID int64) error {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return err
	}
	return s.pinSnooze.Unpin(ctx, chatID, userID)
}

// SnoozeChat hides the chat from the user's default inbox until untilAt.
func (s *ChatService) SnoozeChat(ctx context.Context, companyID, chatID, userID int64, untilAt time.Time) error {
	chat, err := s.chats.GetByID(ctx, companyID, chatID)
	if err != nil {
		return err
	}
	if !untilAt.After(time.Now()) {
		return apperrors.NewValidationError("snooze time must be in the future", nil)
	}
	return s.pinSnooze.Snooze(ctx, chat.ID, userID, untilAt)
}

// UnsnoozeChat restores the chat to the user's inbox.
func (s *ChatService) UnsnoozeChat(ctx context.Context, companyID, chatID, userID int64) error {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return err
	}
	return s.pinSnooze.Unsnooze(ctx, chatID, userID)
}

// ListTags returns all of the company's tags.
func (s *ChatService) ListTags(ctx context.Context, companyID int64) ([]domain.ChatTag, error) {
	return s.tags.ListByCompany(ctx, companyID)
}

// CreateTag adds a company tag. Duplicate names conflict.
func (s *ChatService) CreateTag(ctx context.Context, companyID int64, name string) (*domain.ChatTag, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("tag name is required", nil)
	}
	return s.tags.Create(ctx, companyID, name)
}

// DeleteTag removes the tag and all its chat assignments.
func (s *ChatService) DeleteTag(ctx context.Context, companyID, tagID int64) error {
	return s.tags.Delete(ctx, companyID, tagID)
}

// SetChatTags replaces the chat's tag set with exactly the given ids.
func (s *ChatService) SetChatTags(ctx context.Context, companyID, chatID int64, tagIDs []int64) error {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return err
	}
	return s.tags.SetChatTags(ctx, chatID, tagIDs)
}

// ListChatTagIDs reports the chat's current tag assignments.
func (s *ChatService) ListChatTagIDs(ctx context.Context, companyID, chatID int64) ([]int64, error) {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return nil, err
	}
	return s.tags.ListChatTagIDs(ctx, chatID)
}

// AddNote appends an agent note to the chat.
func (s *ChatService) AddNote(ctx context.Context, companyID, chatID, userID int64, content string) (*domain.ChatNote, error) {
	if content == "" {
		return nil, apperrors.NewValidationError("note content is required", nil)
	}
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return nil, err
	}

	note := &domain.ChatNote{
		CompanyID: companyID,
		ChatID:    chatID,
		UserID:    userID,
		Content:   content,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, companyID, chatID, userID, domain.AuditActionNote, "note added")
	return note, nil
}

// ListNotes returns the chat's notes, newest first.
func (s *ChatService) ListNotes(ctx context.Context, companyID, chatID int64) ([]domain.ChatNote, error) {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return nil, err
	}
	return s.notes.ListByChat(ctx, companyID, chatID)
}

// ListAudit returns the chat's recent audit trail.
func (s *ChatService) ListAudit(ctx context.Context, companyID, chatID int64, limit int) ([]domain.ChatAudit, error) {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return nil, err
	}
	return s.audit.ListByChat(ctx, companyID, chatID, limit)
}

// recordAudit is best-effort: failures are logged, never propagated.
func (s *ChatService) recordAudit(ctx context.Context, companyID, chatID, actorID int64, action domain.AuditAction, detail string) {
	entry := &domain.ChatAudit{
		CompanyID: companyID,
		ChatID:    chatID,
		UserID:    &actorID,
		Action:    action,
		Detail:    detail,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed",
			zap.Int64("chat_id", chatID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// notifyChatUpdated fetches the latest message so company subscribers can
// re-render the affected row.
func (s *ChatService) notifyChatUpdated(ctx context.Context, companyID, chatID int64) {
	if s.publisher == nil {
		return
	}
	var last *domain.Message
	if msgs, err := s.messages.ListByChat(ctx, chatID, 1); err == nil && len(msgs) > 0 {
		last = &msgs[0]
	}
	s.publisher.ChatUpdated(companyID, chatID, last)
}
