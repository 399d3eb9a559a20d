// Package llm adapts text-generation providers to the battle narrative
// generator contract.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderFake      = "fake"
)

// Request is one narrative generation call.
type Request struct {
	Prompt    string
	MaxTokens int
	// Model overrides the provider default when non-empty.
	Model string
}

// Generator turns a prompt into free text. Implementations must return an
// error wrapping ErrGeneration for API failures and empty completions.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	// BaseURL points the provider SDK at another endpoint. Empty means the
	// provider's public API.
	BaseURL      string
	DefaultModel string
	// FakeReply is returned by the fake provider.
	FakeReply string
}

// DefaultModel returns the model used when neither the config nor the
// request names one.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "fake"
	}
}

// New builds the generator for cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel(provider)
	}
	switch provider {
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg), nil
	case ProviderFake:
		return NewFake(cfg.FakeReply), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func model(req Request, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}

func completion(provider, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyCompletion, provider)
	}
	return text, nil
}
