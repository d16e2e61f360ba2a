package ai

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

const summaryPrompt = `Resume la siguiente conversación de WhatsApp entre un negocio y un cliente.
Describe brevemente qué busca el cliente y en qué quedó la conversación.
Termina con una sola línea que diga exactamente "Interesado", "No interesado" o "Indeciso" según el interés del cliente.

Conversación:
%s`

// Summarizer produces a natural-language summary of a chat transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
	Model() string
}

type geminiClient struct {
	http   *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewGeminiSummarizer builds a summarizer against a Gemini-compatible
// generateContent endpoint.
func NewGeminiSummarizer(cfg config.AIConfig, logger *zap.Logger) Summarizer {
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")
	return &geminiClient{http: http, apiKey: cfg.APIKey, model: cfg.Model, logger: logger}
}

func (c *geminiClient) Model() string { return c.model }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) Summarize(ctx context.Context, transcript string) (string, error) {
	if c.apiKey == "" {
		return "", util.NewExternalServiceError("ai summarization is not configured", nil)
	}

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf(summaryPrompt, transcript)}}},
		},
	}

	var out geminiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return "", util.NewExternalServiceError("ai request failed", err)
	}
	if resp.IsError() {
		c.logger.Warn("ai backend rejected request", zap.Int("status", resp.StatusCode()))
		return "", util.NewExternalServiceError(
			fmt.Sprintf("ai backend returned %d", resp.StatusCode()), nil)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", util.NewExternalServiceError("ai backend returned no content", nil)
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

// ClassifyInterest extracts the interest verdict from a summary. "No
// interesado" is matched before "Interesado" since the latter is a substring
// of the former; anything unrecognized counts as undecided.
func ClassifyInterest(summary string) domain.ChatInterest {
	lower := strings.ToLower(summary)
	switch {
	case strings.Contains(lower, "no interesado"):
		return domain.InterestNotInterested
	case strings.Contains(lower, "indeciso"):
		return domain.InterestUndecided
	case strings.Contains(lower, "interesado"):
		return domain.InterestInterested
	}
	return domain.InterestUndecided
}
