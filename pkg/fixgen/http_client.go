package fixgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPLanguageModel is the production LanguageModel binding: a single-shot
// JSON-in/JSON-out HTTP call to a hosted chat-completions endpoint.
type HTTPLanguageModel struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewHTTPLanguageModel returns a binding targeting baseURL, authenticated
// with apiKey as a bearer token.
func NewHTTPLanguageModel(baseURL, apiKey string) *HTTPLanguageModel {
	return &HTTPLanguageModel{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete issues one chat-completion request for model and returns the
// first choice's content.
func (h *HTTPLanguageModel) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	wire := chatRequest{Model: model}
	for _, m := range messages {
		wire.Messages = append(wire.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("fixgen: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("fixgen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.APIKey)

	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fixgen: request to %s: %w", model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fixgen: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitError{Err: fmt.Errorf("model %s rate limited: %s", model, string(respBody))}
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("fixgen: model %s returned %d: %s", model, resp.StatusCode, string(respBody))
	}

	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("fixgen: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("fixgen: model %s returned no choices", model)
	}
	return decoded.Choices[0].Message.Content, nil
}
