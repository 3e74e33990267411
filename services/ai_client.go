package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Failure classes of the enrichment endpoint. These never reach a client-facing
// handler; the enricher logs them and moves on.
var (
	ErrUnavailable       = errors.New("ai endpoint unreachable")
	ErrUpstream          = errors.New("ai endpoint returned an error")
	ErrMalformedResponse = errors.New("ai response malformed")
)

const analysisSystemPrompt = "You are a marine hull inspection analyst. " +
	"Given three surface metrics, each a fraction in [0,1] - rust severity, " +
	"covering (marine growth) and structural damage - write a concise " +
	"inspection summary with a recommended maintenance action."

// AIClient calls a chat-completions style endpoint to turn inspection metrics
// into summary text.
type AIClient struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewAIClient(url, apiKey, model string) *AIClient {
	return &AIClient{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: http.DefaultClient,
	}
}

type aiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type aiPayload struct {
	Messages []aiMessage `json:"messages"`
	Model    string      `json:"model"`
}

type aiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze asks the model to summarize one inspection's metrics. On success the
// first choice's content is returned verbatim.
func (c *AIClient) Analyze(ctx context.Context, rust, covering, damage float64) (string, error) {
	payload := aiPayload{
		Model: c.model,
		Messages: []aiMessage{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Rust severity: %.2f, covering: %.2f, damage: %.2f.", rust, covering, damage)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal ai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed aiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}
