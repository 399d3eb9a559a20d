package battle

import (
	"time"

	"github.com/okian/devxbattle/internal/domain/scoring"
	"github.com/okian/devxbattle/pkg/logger"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFetchTimeout bounds each side's data fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.fetchTimeout = d
		}
	}
}

// WithGenerationTimeout bounds the narrative call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.generationTimeout = d
		}
	}
}

// WithMaxTokens sets the completion budget for battle narratives.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithRoastMaxTokens sets the completion budget for roasts.
func WithRoastMaxTokens(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.roastMaxTokens = n
		}
	}
}

// WithModels sets the model ids used for GitHub and NFT prompts. Empty values
// leave the generator's default in place.
func WithModels(github, nft string) Option {
	return func(o *Orchestrator) {
		o.githubModel = github
		o.nftModel = nft
	}
}

// WithScorer replaces the NFT score calculator.
func WithScorer(s scoring.Scorer) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.scorer = s
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator replaces the battle id source.
func WithIDGenerator(f func() string) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.newID = f
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}
