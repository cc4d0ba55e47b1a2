package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	domai "github.com/bryanwahyu/sentinel-aio/internal/domain/ai"
	"github.com/bryanwahyu/sentinel-aio/internal/infra/ai/prompt"
)

// Client talks to a local Ollama daemon over its generate API.
type Client struct {
	Host  string
	Model string
	HTTP  *http.Client
}

func NewClient(host, model string) *Client {
	return &Client{
		Host:  strings.TrimRight(host, "/"),
		Model: model,
		HTTP:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) GenerateCandidates(ctx context.Context, telemetry string) ([]string, error) {
	text, err := c.generate(ctx, prompt.CandidateSystemPrompt()+"\n\n"+prompt.CandidateUserPrompt(telemetry))
	if err != nil {
		return nil, err
	}
	return prompt.CleanLines(text), nil
}

func (c *Client) Summarize(ctx context.Context, items []domai.FindingSummary) (string, error) {
	if len(items) == 0 {
		return "No findings recorded.", nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s [%s]", it.Title, it.Severity))
	}
	text, err := c.generate(ctx, prompt.SummarySystemPrompt()+"\n\n"+prompt.SummaryUserPrompt(lines))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generate(ctx context.Context, promptText string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model":  c.Model,
		"prompt": promptText,
		"stream": false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	return out.Response, nil
}
