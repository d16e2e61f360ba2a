package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sibarconnect/inbox-service/internal/ai"
	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/internal/repository"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

const summaryMessageWindow = 100

// SummaryService builds and stores AI conversation summaries.
type SummaryService struct {
	summaries  repository.SummaryRepository
	messages   repository.MessageRepository
	chats      repository.ChatRepository
	summarizer ai.Summarizer
}

// SummaryDependencies bundles collaborators for the summary service.
type SummaryDependencies struct {
	SummaryRepo repository.SummaryRepository
	MessageRepo repository.MessageRepository
	ChatRepo    repository.ChatRepository
	Summarizer  ai.Summarizer
}

// NewSummaryService constructs the service.
func NewSummaryService(deps SummaryDependencies) *SummaryService {
	return &SummaryService{
		summaries:  deps.SummaryRepo,
		messages:   deps.MessageRepo,
		chats:      deps.ChatRepo,
		summarizer: deps.Summarizer,
	}
}

// Generate summarizes the chat's recent text messages and upserts the
// result. Repeated calls refresh the stored summary in place.
func (s *SummaryService) Generate(ctx context.Context, companyID, chatID int64) (*domain.ChatSummary, error) {
	if _, err := s.chats.GetByID(ctx, companyID, chatID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByChat(ctx, chatID, summaryMessageWindow)
	if err != nil {
		return nil, err
	}

	transcript := buildTranscript(msgs)
	if transcript == "" {
		return nil, apperrors.NewValidationError("chat has no text messages to summarize", nil)
	}

	text, err := s.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return nil, err
	}

	summary := &domain.ChatSummary{
		ChatID:    chatID,
		CompanyID: companyID,
		Summary:   text,
		Interest:  ai.ClassifyInterest(text),
		Provider:  "gemini",
		Model:     s.summarizer.Model(),
	}
	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Get returns the stored summary for a chat.
func (s *SummaryService) Get(ctx context.Context, companyID, chatID int64) (*domain.ChatSummary, error) {
	return s.summaries.GetByChat(ctx, companyID, chatID)
}

// buildTranscript renders text messages oldest-first as speaker-labelled
// lines. Listing returns newest-first, so the order is reversed here.
func buildTranscript(msgs []domain.Message) string {
	var lines []string
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.MessageType != domain.MessageTypeText || msg.Content == "" {
			continue
		}
		speaker := "Cliente"
		if msg.Direction == domain.DirectionOutgoing {
			speaker = "Agente"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, msg.Content))
	}
	return strings.Join(lines, "\n")
}
