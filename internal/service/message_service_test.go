package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/domain"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

type messageFixture struct {
	service   *MessageService
	chats     *fakeChatRepo
	messages  *fakeMessageRepo
	provider  *fakeProvider
	publisher *fakePublisher
}

func newMessageFixture() *messageFixture {
	apiKey := "key"
	from := "+5215559999"
	f := &messageFixture{
		chats:     newFakeChatRepo(),
		messages:  &fakeMessageRepo{},
		provider:  &fakeProvider{},
		publisher: &fakePublisher{},
	}
	f.service = NewMessageService(MessageDependencies{
		ChatRepo:    f.chats,
		MessageRepo: f.messages,
		CompanyRepo: &fakeCompanyRepo{companies: map[int64]*domain.Company{
			1: {ID: 1, Name: "Acme", WhatsAppPhoneNumber: &from, ProviderAPIKey: &apiKey},
			2: {ID: 2, Name: "NoProvider"},
		}},
		Provider:  f.provider,
		Publisher: f.publisher,
		Logger:    zap.NewNop(),
	})
	return f
}

func TestSendMessagePersistsAfterProviderAccepts(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	chat, err := f.chats.GetOrCreate(ctx, 1, "+5215550001", nil)
	require.NoError(t, err)

	msg, err := f.service.SendMessage(ctx, 1, chat.ID, 9, "Eva", SendInput{Content: "hola"})
	require.NoError(t, err)

	assert.Equal(t, domain.DirectionOutgoing, msg.Direction)
	require.NotNil(t, msg.ProviderMessageID)
	assert.Equal(t, "prov-1", *msg.ProviderMessageID)
	require.Len(t, f.provider.calls, 1)
	assert.Equal(t, "+5215550001", f.provider.calls[0].to)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "message.created", f.publisher.events[0].kind)
}

func TestSendMessageProviderFailureDoesNotPersist(t *testing.T) {
	f := newMessageFixture()
	f.provider.failWith = errBoom
	ctx := context.Background()
	chat, err := f.chats.GetOrCreate(ctx, 1, "+5215550001", nil)
	require.NoError(t, err)

	_, err = f.service.SendMessage(ctx, 1, chat.ID, 9, "Eva", SendInput{Content: "hola"})
	require.Error(t, err)
	assert.Empty(t, f.messages.messages)
	assert.Empty(t, f.publisher.events)
}

func TestSendMessageRequiresProviderConfig(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	chat, err := f.chats.GetOrCreate(ctx, 2, "+5215550001", nil)
	require.NoError(t, err)

	_, err = f.service.SendMessage(ctx, 2, chat.ID, 9, "Eva", SendInput{Content: "hola"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestStartChatReusesExistingConversation(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	first, _, err := f.service.StartChat(ctx, 1, 9, "Eva", "+5215550001", nil, "hola")
	require.NoError(t, err)
	second, _, err := f.service.StartChat(ctx, 1, 9, "Eva", "+5215550001", nil, "seguimos")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.messages.messages, 2)
}

func TestStartTemplateRecordsTemplateMessage(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	name := "Ana"

	_, msg, err := f.service.StartTemplate(ctx, 1, 9, "Eva", "+5215550001", &name, "bienvenida", "es", []string{"Ana"})
	require.NoError(t, err)

	assert.Equal(t, domain.MessageTypeTemplate, msg.MessageType)
	assert.Equal(t, "[Plantilla: bienvenida]", msg.Content)
}

func TestRecordInboundCreatesChatAndPublishes(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	name := "Ana"
	providerID := "in-1"

	msg, err := f.service.RecordInbound(ctx, 1, InboundInput{
		From:              "+5215550001",
		CustomerName:      &name,
		Type:              domain.MessageTypeText,
		Body:              "quiero información",
		ProviderMessageID: &providerID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DirectionIncoming, msg.Direction)
	chat, err := f.chats.GetByID(ctx, 1, msg.ChatID)
	require.NoError(t, err)
	require.NotNil(t, chat.CustomerName)
	assert.Equal(t, "Ana", *chat.CustomerName)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "message.created", f.publisher.events[0].kind)
}

func TestRecordInboundMediaWithoutCaptionGetsPlaceholder(t *testing.T) {
	f := newMessageFixture()
	url := "https://cdn.example.com/a.jpg"

	msg, err := f.service.RecordInbound(context.Background(), 1, InboundInput{
		From:     "+5215550001",
		Type:     domain.MessageTypeImage,
		MediaURL: &url,
	})
	require.NoError(t, err)
	assert.Equal(t, "[Imagen]", msg.Content)
	require.NotNil(t, msg.AttachmentURL)
	assert.Equal(t, url, *msg.AttachmentURL)
}

func TestUpdateDeliveryStatusIgnoresUnknownMessage(t *testing.T) {
	f := newMessageFixture()
	err := f.service.UpdateDeliveryStatus(context.Background(), "missing", domain.DeliveryRead)
	assert.NoError(t, err)
}

func TestUpdateDeliveryStatusAppliesKnownMessage(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	chat, err := f.chats.GetOrCreate(ctx, 1, "+5215550001", nil)
	require.NoError(t, err)

	msg, err := f.service.SendMessage(ctx, 1, chat.ID, 9, "Eva", SendInput{Content: "hola"})
	require.NoError(t, err)

	require.NoError(t, f.service.UpdateDeliveryStatus(ctx, *msg.ProviderMessageID, domain.DeliveryRead))
	stored, err := f.messages.ListByChat(ctx, chat.ID, 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.DeliveryRead, stored[0].Status)
}

func TestPlaceholderFor(t *testing.T) {
	assert.Equal(t, "[Imagen]", placeholderFor(domain.MessageTypeImage, ""))
	assert.Equal(t, "[Audio]", placeholderFor(domain.MessageTypeAudio, ""))
	assert.Equal(t, "[Video]", placeholderFor(domain.MessageTypeVideo, ""))
	assert.Equal(t, "[Sticker]", placeholderFor(domain.MessageTypeSticker, ""))
	assert.Equal(t, "[Documento: factura.pdf]", placeholderFor(domain.MessageTypeDocument, "factura.pdf"))
	assert.Equal(t, "[Documento]", placeholderFor(domain.MessageTypeDocument, ""))
	assert.Empty(t, placeholderFor(domain.MessageTypeText, ""))
}
