package llm

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// Gemini generates narratives with the Gemini API.
type Gemini struct {
	cli   *genai.Client
	model string
	// err is set when the client could not be built, e.g. no API key.
	// Every Generate call reports it.
	err   error
}

// NewGemini builds the provider. With an empty key the genai client falls
// back to GOOGLE_API_KEY / GEMINI_API_KEY from the environment; when none is
// found the provider still builds and each call fails as a generation error.
func NewGemini(ctx context.Context, cfg Config) *Gemini {
	g := &Gemini{model: cfg.DefaultModel}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		g.err = fmt.Errorf("%w: gemini client: %w", ErrGeneration, err)
		return g
	}
	g.cli = cli
	return g
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	var cfg *genai.GenerateContentConfig
	if req.MaxTokens > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	}
	resp, err := g.cli.Models.GenerateContent(ctx, model(req, g.model),
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrGeneration, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return completion(g.Name(), "")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return completion(g.Name(), b.String())
}
