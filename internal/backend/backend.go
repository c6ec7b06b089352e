// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend abstracts the generative model API behind a small
// interface so the analysis pipeline and its tests do not care whether the
// model is a local Ollama instance or a hosted API.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

// Generator is a single generative text backend. Implementations apply a
// fixed low sampling temperature to bias the model toward deterministic
// structured output; callers cannot tune sampling per request.
type Generator interface {
	// Generate submits one prompt and returns the raw model reply.
	// Failures wrap ErrGeneration and are scoped to the single call.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Name identifies the backend for logs and run metadata.
	Name() string
}

// ErrUnavailable marks a backend that cannot be reached at all. It is
// returned at construction time so a cold backend fails before any content
// is analyzed, and is fatal to starting a run.
var ErrUnavailable = errors.New("model backend unavailable")

// ErrGeneration marks a single failed model call: timeout, transport error,
// or a non-2xx backend response. It is item-scoped and must never abort a
// whole run.
var ErrGeneration = errors.New("model generation failed")

// temperature is the fixed sampling temperature for every call.
const temperature = 0.1

// defaultCallTimeout bounds one generation call when the config does not
// override it. Local models routinely take tens of seconds per reply.
const defaultCallTimeout = 2 * time.Minute

// New constructs the Generator selected by cfg.Backend.
func New(cfg types.AIConfig) (Generator, error) {
	switch cfg.Backend {
	case types.BackendOllama, "":
		return NewOllama(cfg)
	case types.BackendClaude:
		return NewClaude(cfg)
	case types.BackendGemini:
		return NewGemini(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q (want ollama, claude, or gemini)", cfg.Backend)
	}
}

func callTimeout(cfg types.AIConfig) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return defaultCallTimeout
}
