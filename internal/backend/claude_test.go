package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

func TestNewClaudeRequiresAPIKey(t *testing.T) {
	_, err := NewClaude(types.AIConfig{Model: "m"})
	require.Error(t, err)
}

func TestClaudeGenerate(t *testing.T) {
	var gotReq claudeRequest
	var gotHeaders http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "{\"summary\": \"s\"}"}]}`))
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c, err := NewClaude(types.AIConfig{Model: "claude-test", APIKey: "sk-test"})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "extract this", 3000)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "s"}`, out)

	assert.Equal(t, "sk-test", gotHeaders.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", gotHeaders.Get("anthropic-version"))
	assert.Equal(t, "claude-test", gotReq.Model)
	assert.Equal(t, 3000, gotReq.MaxTokens)
	assert.InDelta(t, 0.1, gotReq.Temperature, 1e-9)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "extract this", gotReq.Messages[0].Content)
}

func TestClaudeGenerateNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"type": "overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c, err := NewClaude(types.AIConfig{Model: "m", APIKey: "k"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "p", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestClaudeGenerateEmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content": []}`))
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c, err := NewClaude(types.AIConfig{Model: "m", APIKey: "k"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "p", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
}
