package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPProvider talks to an OpenAI-compatible chat completion endpoint.
type HTTPProvider struct {
	url    string
	key    string
	model  string
	client *http.Client
}

// NewHTTPProvider creates a provider for the given endpoint and model.
// key may be empty for unauthenticated endpoints. Per-call deadlines come
// from the context, not the client.
func NewHTTPProvider(url, key, model string) *HTTPProvider {
	return &HTTPProvider{
		url:    url,
		key:    key,
		model:  model,
		client: &http.Client{},
	}
}

// Generate posts the messages and extracts the first choice.
func (p *HTTPProvider) Generate(ctx context.Context, messages []Message, params Params) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, params.Timeout())
	defer cancel()

	payload := map[string]any{
		"model":    p.model,
		"messages": messages,
	}
	if params.Temperature > 0 {
		payload["temperature"] = params.Temperature
	}
	if params.MaxTokens > 0 {
		payload["max_tokens"] = params.MaxTokens
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.key != "" {
		req.Header.Set("Authorization", "Bearer "+p.key)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("oracle http %d: %s", resp.StatusCode, truncate(body))
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("oracle returned html")
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("oracle empty choices")
	}

	reply := CleanReply(parsed.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
