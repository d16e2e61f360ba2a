package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibarconnect/inbox-service/internal/api/dto"
	"github.com/sibarconnect/inbox-service/internal/domain"
)

func TestInboundInputText(t *testing.T) {
	input := inboundInput(&dto.YCloudInboundMessage{
		ID:    "msg-1",
		WAMID: "wamid-1",
		From:  "+5215550001",
		Type:  "text",
		Text:  &dto.YCloudText{Body: "hola, quiero información"},
		CustomerProfile: &dto.YCloudCustomerProfile{
			Name: "Ana",
		},
	})

	assert.Equal(t, "+5215550001", input.From)
	assert.Equal(t, domain.MessageTypeText, input.Type)
	assert.Equal(t, "hola, quiero información", input.Body)
	require.NotNil(t, input.ProviderMessageID)
	assert.Equal(t, "msg-1", *input.ProviderMessageID)
	require.NotNil(t, input.WAMID)
	assert.Equal(t, "wamid-1", *input.WAMID)
	require.NotNil(t, input.CustomerName)
	assert.Equal(t, "Ana", *input.CustomerName)
	assert.Nil(t, input.MediaURL)
}

func TestInboundInputMediaVariants(t *testing.T) {
	media := &dto.YCloudMedia{Link: "https://cdn.example.com/f", Caption: "mira esto"}

	cases := []struct {
		payloadType string
		set         func(*dto.YCloudInboundMessage)
		want        domain.MessageType
	}{
		{"image", func(m *dto.YCloudInboundMessage) { m.Image = media }, domain.MessageTypeImage},
		{"video", func(m *dto.YCloudInboundMessage) { m.Video = media }, domain.MessageTypeVideo},
		{"audio", func(m *dto.YCloudInboundMessage) { m.Audio = media }, domain.MessageTypeAudio},
		{"sticker", func(m *dto.YCloudInboundMessage) { m.Sticker = media }, domain.MessageTypeSticker},
	}
	for _, tc := range cases {
		t.Run(tc.payloadType, func(t *testing.T) {
			msg := &dto.YCloudInboundMessage{From: "+5215550001", Type: tc.payloadType}
			tc.set(msg)

			input := inboundInput(msg)
			assert.Equal(t, tc.want, input.Type)
			require.NotNil(t, input.MediaURL)
			assert.Equal(t, "https://cdn.example.com/f", *input.MediaURL)
			assert.Equal(t, "mira esto", input.Body)
		})
	}
}

func TestInboundInputDocumentFilenameFallback(t *testing.T) {
	input := inboundInput(&dto.YCloudInboundMessage{
		From: "+5215550001",
		Type: "document",
		Document: &dto.YCloudMedia{
			Link:     "https://cdn.example.com/d",
			Filename: "cotizacion.pdf",
		},
	})

	assert.Equal(t, domain.MessageTypeDocument, input.Type)
	assert.Equal(t, "[Documento: cotizacion.pdf]", input.Body)
}

func TestInboundInputUnknownTypeFallsBackToText(t *testing.T) {
	input := inboundInput(&dto.YCloudInboundMessage{
		From: "+5215550001",
		Type: "reaction",
	})

	assert.Equal(t, domain.MessageTypeText, input.Type)
	assert.Empty(t, input.Body)
	assert.Nil(t, input.MediaURL)
}

func TestDeliveryStatusMapping(t *testing.T) {
	cases := []struct {
		raw    string
		want   domain.DeliveryStatus
		mapped bool
	}{
		{"sent", domain.DeliverySent, true},
		{"delivered", domain.DeliveryDelivered, true},
		{"read", domain.DeliveryRead, true},
		{"failed", domain.DeliveryFailed, true},
		{"undelivered", domain.DeliveryFailed, true},
		{"accepted", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := deliveryStatus(tc.raw)
		assert.Equal(t, tc.mapped, ok, tc.raw)
		if tc.mapped {
			assert.Equal(t, tc.want, got, tc.raw)
		}
	}
}
