package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/sentinel-aio/internal/domain/ai"
	"github.com/bryanwahyu/sentinel-aio/internal/infra/ai/prompt"
)

const maxTokens = 400

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) GenerateCandidates(ctx context.Context, telemetry string) ([]string, error) {
	content, err := c.chat(ctx,
		prompt.CandidateSystemPrompt(),
		prompt.CandidateUserPrompt(telemetry),
	)
	if err != nil {
		return nil, err
	}
	return prompt.CleanLines(content), nil
}

func (c *Client) Summarize(ctx context.Context, items []domai.FindingSummary) (string, error) {
	if len(items) == 0 {
		return "No findings recorded.", nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s [%s]", it.Title, it.Severity))
	}
	content, err := c.chat(ctx, prompt.SummarySystemPrompt(), prompt.SummaryUserPrompt(lines))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.HTTPStatusCode {
			case 401:
				return "", fmt.Errorf("%w: %v", domai.ErrNotConfigured, err)
			case 429:
				return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
			}
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
