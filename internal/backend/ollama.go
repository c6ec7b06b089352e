// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

const defaultOllamaURL = "http://localhost:11434"

// healthCheckTimeout bounds the construction-time reachability probe.
const healthCheckTimeout = 5 * time.Second

// Ollama generates text via a local Ollama server's /api/generate endpoint.
type Ollama struct {
	model   string
	baseURL string
	client  *http.Client
}

// ollamaRequest is the /api/generate request body.
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

// ollamaResponse is the /api/generate response body (stream disabled).
type ollamaResponse struct {
	Response string `json:"response"`
}

// ollamaTags is the /api/tags response body.
type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllama verifies the Ollama server is reachable and returns a backend
// bound to cfg.Model. An unreachable server wraps ErrUnavailable: a cold
// local backend should fail before any content is analyzed. A reachable
// server that does not list the model only warns, since Ollama resolves
// partial model names at generation time.
func NewOllama(cfg types.AIConfig) (*Ollama, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}

	o := &Ollama{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: callTimeout(cfg)},
	}

	probe := &http.Client{Timeout: healthCheckTimeout}
	resp, err := probe.Get(o.baseURL + "/api/tags")
	if err != nil {
		return nil, fmt.Errorf("%w: cannot connect to Ollama at %s (is `ollama serve` running?): %v",
			ErrUnavailable, o.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Ollama at %s returned HTTP %d", ErrUnavailable, o.baseURL, resp.StatusCode)
	}

	var tags ollamaTags
	if err := json.NewDecoder(resp.Body).Decode(&tags); err == nil {
		found := false
		names := make([]string, 0, len(tags.Models))
		for _, m := range tags.Models {
			names = append(names, m.Name)
			if strings.Contains(m.Name, model) {
				found = true
			}
		}
		if !found {
			fmt.Fprintf(os.Stderr, "warning: model %q not found on Ollama server (available: %v); run: ollama pull %s\n",
				model, names, model)
		}
	}

	return o, nil
}

// Generate submits one prompt to /api/generate and returns the reply text.
func (o *Ollama) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			NumPredict:  maxTokens,
			Temperature: temperature,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: calling Ollama: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: Ollama returned HTTP %d: %s", ErrGeneration, resp.StatusCode, string(body))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("%w: decoding Ollama response: %v", ErrGeneration, err)
	}

	return oResp.Response, nil
}

// Name implements Generator.
func (o *Ollama) Name() string {
	return "ollama/" + o.model
}
