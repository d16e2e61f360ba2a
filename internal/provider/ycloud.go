package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/config"
	"github.com/sibarconnect/inbox-service/internal/domain"
	"github.com/sibarconnect/inbox-service/pkg/util"
)

// Credentials are per-company provider settings, resolved at call time from
// the company record.
type Credentials struct {
	APIKey     string
	FromNumber string
}

// OutboundMessage is a provider-agnostic send request.
type OutboundMessage struct {
	Type     domain.MessageType
	Body     string
	MediaURL *string
	Filename *string
}

// SendResult carries the provider identifiers for a delivered send.
type SendResult struct {
	ProviderMessageID string
	WAMID             string
}

// Client is the WhatsApp provider surface the services depend on.
type Client interface {
	SendMessage(ctx context.Context, creds Credentials, to string, msg OutboundMessage) (*SendResult, error)
	SendTemplate(ctx context.Context, creds Credentials, to, templateName, languageCode string, params []string) (*SendResult, error)
	TestConnection(ctx context.Context, creds Credentials) error
}

type ycloudClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewYCloudClient builds a client against the YCloud WhatsApp API.
func NewYCloudClient(cfg config.ProviderConfig, logger *zap.Logger) Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")
	return &ycloudClient{http: http, logger: logger}
}

type ycloudSendResponse struct {
	ID     string `json:"id"`
	WAMID  string `json:"wamid"`
	Status string `json:"status"`
}

type ycloudError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *ycloudClient) SendMessage(ctx context.Context, creds Credentials, to string, msg OutboundMessage) (*SendResult, error) {
	body := map[string]any{
		"from": normalizePhone(creds.FromNumber),
		"to":   normalizePhone(to),
		"type": string(msg.Type),
	}

	switch msg.Type {
	case domain.MessageTypeText:
		body["text"] = map[string]any{"body": msg.Body}
	case domain.MessageTypeImage, domain.MessageTypeVideo, domain.MessageTypeAudio, domain.MessageTypeSticker:
		if msg.MediaURL == nil {
			return nil, util.NewValidationError("media url is required for media messages", nil)
		}
		media := map[string]any{"link": *msg.MediaURL}
		if msg.Body != "" && msg.Type != domain.MessageTypeSticker {
			media["caption"] = msg.Body
		}
		body[string(msg.Type)] = media
	case domain.MessageTypeDocument:
		if msg.MediaURL == nil {
			return nil, util.NewValidationError("media url is required for media messages", nil)
		}
		doc := map[string]any{"link": *msg.MediaURL}
		if msg.Filename != nil {
			doc["filename"] = *msg.Filename
		}
		if msg.Body != "" {
			doc["caption"] = msg.Body
		}
		body["document"] = doc
	default:
		return nil, util.NewValidationError(fmt.Sprintf("unsupported outbound message type %q", msg.Type), nil)
	}

	return c.post(ctx, creds, body)
}

func (c *ycloudClient) SendTemplate(ctx context.Context, creds Credentials, to, templateName, languageCode string, params []string) (*SendResult, error) {
	if languageCode == "" {
		languageCode = "es"
	}
	template := map[string]any{
		"name":     templateName,
		"language": map[string]any{"code": languageCode},
	}
	if len(params) > 0 {
		parameters := make([]map[string]any, 0, len(params))
		for _, p := range params {
			parameters = append(parameters, map[string]any{"type": "text", "text": p})
		}
		template["components"] = []map[string]any{
			{"type": "body", "parameters": parameters},
		}
	}

	body := map[string]any{
		"from":     normalizePhone(creds.FromNumber),
		"to":       normalizePhone(to),
		"type":     "template",
		"template": template,
	}
	return c.post(ctx, creds, body)
}

func (c *ycloudClient) post(ctx context.Context, creds Credentials, body map[string]any) (*SendResult, error) {
	var out ycloudSendResponse
	var apiErr ycloudError

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", creds.APIKey).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/whatsapp/messages")
	if err != nil {
		return nil, util.NewExternalServiceError("whatsapp provider request failed", err)
	}
	if resp.IsError() {
		c.logger.Warn("provider rejected send",
			zap.Int("status", resp.StatusCode()),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message))
		return nil, util.NewExternalServiceError(
			fmt.Sprintf("whatsapp provider returned %d: %s", resp.StatusCode(), apiErr.Message), nil)
	}
	return &SendResult{ProviderMessageID: out.ID, WAMID: out.WAMID}, nil
}

// TestConnection verifies the API key by listing the account's WhatsApp
// phone numbers.
func (c *ycloudClient) TestConnection(ctx context.Context, creds Credentials) error {
	var apiErr ycloudError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", creds.APIKey).
		SetError(&apiErr).
		Get("/whatsapp/phoneNumbers")
	if err != nil {
		return util.NewExternalServiceError("whatsapp provider request failed", err)
	}
	if resp.IsError() {
		return util.NewExternalServiceError(
			fmt.Sprintf("whatsapp provider returned %d: %s", resp.StatusCode(), apiErr.Message), nil)
	}
	return nil
}

// normalizePhone ensures the number carries a leading plus sign; the
// provider rejects bare international numbers.
func normalizePhone(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, "+") {
		return number
	}
	return "+" + number
}
