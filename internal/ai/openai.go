package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	decisionTemperature = 0.3
	decisionMaxTokens   = 500
)

// ChatProvider talks to any OpenAI-compatible chat-completions endpoint.
// It backs both the OpenAI and the DeepSeek adapters.
type ChatProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *ChatProvider {
	return &ChatProvider{client: openai.NewClient(apiKey)}
}

func NewDeepSeekProvider(apiKey string) *ChatProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = "https://api.deepseek.com/v1"
	return &ChatProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *ChatProvider) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: decisionTemperature,
		MaxTokens:   decisionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}
