// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

// claudeAPIURL is the Claude Messages API endpoint. Package-level var for
// test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// Claude generates text via the Claude Messages API.
type Claude struct {
	model  string
	apiKey string
	client *http.Client
}

// claudeRequest is the Messages API request body.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the Messages API response body.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewClaude returns a Claude backend. Hosted backends get no construction
// probe; reachability problems surface per call as ErrGeneration.
func NewClaude(cfg types.AIConfig) (*Claude, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude backend requires an API key (.secrets/anthropic-api-key)")
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	return &Claude{
		model:  model,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: callTimeout(cfg)},
	}, nil
}

// Generate submits one prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (c *Claude) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := claudeRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: calling Claude API: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: Claude API returned %d: %s", ErrGeneration, resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("%w: decoding Claude response: %v", ErrGeneration, err)
	}

	var text bytes.Buffer
	for _, block := range cResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: Claude API returned no text content", ErrGeneration)
	}

	return text.String(), nil
}

// Name implements Generator.
func (c *Claude) Name() string {
	return "claude/" + c.model
}
