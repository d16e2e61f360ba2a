package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibarconnect/inbox-service/internal/domain"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

type fakeSummaryRepo struct {
	upserts []domain.ChatSummary
}

func (f *fakeSummaryRepo) Upsert(_ context.Context, summary *domain.ChatSummary) error {
	f.upserts = append(f.upserts, *summary)
	return nil
}

func (f *fakeSummaryRepo) GetByChat(context.Context, int64, int64) (*domain.ChatSummary, error) {
	if len(f.upserts) == 0 {
		return nil, nil
	}
	last := f.upserts[len(f.upserts)-1]
	return &last, nil
}

type fakeSummarizer struct {
	gotTranscript string
	reply         string
}

func (f *fakeSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	f.gotTranscript = transcript
	return f.reply, nil
}

func (f *fakeSummarizer) Model() string { return "test-model" }

func TestGenerateSummaryBuildsChronologicalTranscript(t *testing.T) {
	chats := newFakeChatRepo()
	messages := &fakeMessageRepo{}
	summaries := &fakeSummaryRepo{}
	summarizer := &fakeSummarizer{reply: "Pidió precios. Interesado"}

	svc := NewSummaryService(SummaryDependencies{
		SummaryRepo: summaries,
		MessageRepo: messages,
		ChatRepo:    chats,
		Summarizer:  summarizer,
	})

	ctx := context.Background()
	chat, err := chats.GetOrCreate(ctx, 1, "+5215550001", nil)
	require.NoError(t, err)

	seed := []struct {
		direction domain.MessageDirection
		kind      domain.MessageType
		body      string
	}{
		{domain.DirectionIncoming, domain.MessageTypeText, "hola"},
		{domain.DirectionOutgoing, domain.MessageTypeText, "buenas, ¿en qué ayudo?"},
		{domain.DirectionIncoming, domain.MessageTypeImage, "[Imagen]"},
		{domain.DirectionIncoming, domain.MessageTypeText, "precios por favor"},
	}
	for _, m := range seed {
		require.NoError(t, messages.Create(ctx, &domain.Message{
			ChatID:      chat.ID,
			Content:     m.body,
			MessageType: m.kind,
			Direction:   m.direction,
		}))
	}

	summary, err := svc.Generate(ctx, 1, chat.ID)
	require.NoError(t, err)

	lines := strings.Split(summarizer.gotTranscript, "\n")
	require.Len(t, lines, 3, "non-text messages are excluded")
	assert.Equal(t, "Cliente: hola", lines[0])
	assert.Equal(t, "Agente: buenas, ¿en qué ayudo?", lines[1])
	assert.Equal(t, "Cliente: precios por favor", lines[2])

	assert.Equal(t, domain.InterestInterested, summary.Interest)
	assert.Equal(t, "test-model", summary.Model)
	require.Len(t, summaries.upserts, 1)
}

func TestGenerateSummaryRejectsEmptyChat(t *testing.T) {
	chats := newFakeChatRepo()
	svc := NewSummaryService(SummaryDependencies{
		SummaryRepo: &fakeSummaryRepo{},
		MessageRepo: &fakeMessageRepo{},
		ChatRepo:    chats,
		Summarizer:  &fakeSummarizer{},
	})

	ctx := context.Background()
	chat, err := chats.GetOrCreate(ctx, 1, "+5215550001", nil)
	require.NoError(t, err)

	_, err = svc.Generate(ctx, 1, chat.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
