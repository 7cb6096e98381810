package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// AnthropicProvider calls the Anthropic messages API over plain HTTP.
type AnthropicProvider struct {
	http *resty.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	client := resty.New().
		SetBaseURL("https://api.anthropic.com").
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetHeader("Content-Type", "application/json")

	return &AnthropicProvider{http: client}
}

func (p *AnthropicProvider) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	var out anthropicResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(anthropicRequest{
			Model:     model,
			MaxTokens: decisionMaxTokens,
			System:    systemPrompt,
			Messages:  []anthropicMessage{{Role: "user", Content: userPrompt}},
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("anthropic %s: %s", out.Error.Type, out.Error.Message)
		}
		return "", fmt.Errorf("anthropic status %d", resp.StatusCode())
	}
	if len(out.Content) == 0 {
		return "", fmt.Errorf("anthropic model %s returned no content", model)
	}
	return out.Content[0].Text, nil
}
