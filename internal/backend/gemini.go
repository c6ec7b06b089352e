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

// geminiAPIBase is the Gemini generateContent endpoint prefix. Package-level
// var for test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini generates text via the Gemini generateContent API.
type Gemini struct {
	model  string
	apiKey string
	client *http.Client
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGemini returns a Gemini backend.
func NewGemini(cfg types.AIConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini backend requires an API key (.secrets/gemini-api-key)")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-pro"
	}
	return &Gemini{
		model:  model,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: callTimeout(cfg)},
	}, nil
}

// Generate submits one prompt and returns the first candidate's text.
func (g *Gemini) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     temperature,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: maxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", ErrGeneration, err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiAPIBase, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: calling Gemini API: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: Gemini API returned %d: %s", ErrGeneration, resp.StatusCode, string(body))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("%w: decoding Gemini response: %v", ErrGeneration, err)
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: Gemini API returned no candidates", ErrGeneration)
	}

	return gResp.Candidates[0].Content.Parts[0].Text, nil
}

// Name implements Generator.
func (g *Gemini) Name() string {
	return "gemini/" + g.model
}
