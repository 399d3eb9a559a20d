// Package battle resolves battle requests from combatant identifiers to a
// BattleOutcome.
package battle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/devxbattle/internal/adapters/llm"
	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/internal/domain/scoring"
	"github.com/okian/devxbattle/pkg/logger"
	"github.com/okian/devxbattle/pkg/metrics"
)

const (
	defaultFetchTimeout      = 10 * time.Second
	defaultGenerationTimeout = 60 * time.Second
	defaultMaxTokens         = 1000
	defaultRoastMaxTokens    = 150

	outcomeCompleted = "completed"
	outcomeDegraded  = "degraded"
	outcomeFailed    = "failed"
	modeRoast        = "nft_roast"
)

// ProfileFetcher loads a GitHub profile with repositories and README.
type ProfileFetcher interface {
	FetchAll(ctx context.Context, username string) (model.GitHubProfile, error)
}

// MetadataFetcher loads an NFT metadata document.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, uri string) (model.NFTAttributeSet, error)
}

// TokenFetcher finds the first token a wallet owns, with its metadata.
type TokenFetcher interface {
	FirstToken(ctx context.Context, wallet string) (model.NFTToken, model.NFTAttributeSet, error)
}

// Dependencies are the collaborators an Orchestrator cannot work without.
type Dependencies struct {
	Profiles  ProfileFetcher
	Metadata  MetadataFetcher
	Tokens    TokenFetcher
	Generator llm.Generator
}

// Orchestrator runs battles. It holds no per-battle state and is safe for
// concurrent use.
type Orchestrator struct {
	profiles ProfileFetcher
	metadata MetadataFetcher
	tokens   TokenFetcher
	gen      llm.Generator
	scorer   scoring.Scorer

	fetchTimeout      time.Duration
	generationTimeout time.Duration
	maxTokens         int
	roastMaxTokens    int
	githubModel       string
	nftModel          string

	now   func() time.Time
	newID func() string
	log   logger.Logger
}

// New creates an Orchestrator.
func New(deps Dependencies, opts ...Option) (*Orchestrator, error) {
	switch {
	case deps.Profiles == nil:
		return nil, fmt.Errorf("%w: profile fetcher", ErrMissingDependency)
	case deps.Metadata == nil:
		return nil, fmt.Errorf("%w: metadata fetcher", ErrMissingDependency)
	case deps.Tokens == nil:
		return nil, fmt.Errorf("%w: token fetcher", ErrMissingDependency)
	case deps.Generator == nil:
		return nil, fmt.Errorf("%w: generator", ErrMissingDependency)
	}

	o := &Orchestrator{
		profiles:          deps.Profiles,
		metadata:          deps.Metadata,
		tokens:            deps.Tokens,
		gen:               deps.Generator,
		scorer:            scoring.NewAttributeScorer(),
		fetchTimeout:      defaultFetchTimeout,
		generationTimeout: defaultGenerationTimeout,
		maxTokens:         defaultMaxTokens,
		roastMaxTokens:    defaultRoastMaxTokens,
		now:               time.Now,
		newID:             uuid.NewString,
		log:               logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.Named("battle")
	return o, nil
}

// bothSides runs fetch for the left and right side concurrently. Each side
// gets its own deadline; the first failure cancels the other side and is
// returned tagged with the side that failed.
func (o *Orchestrator) bothSides(ctx context.Context, fetch func(ctx context.Context, side Side) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, side := range []Side{SideLeft, SideRight} {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, o.fetchTimeout)
			defer cancel()
			if err := fetch(sctx, side); err != nil {
				return &Error{Kind: KindCombatantDataUnavailable, Side: side, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

func (o *Orchestrator) generate(ctx context.Context, req llm.Request) (string, error) {
	gctx, cancel := context.WithTimeout(ctx, o.generationTimeout)
	defer cancel()
	text, err := o.gen.Generate(gctx, req)
	if err != nil {
		return "", &Error{Kind: KindNarrativeGenerationFailed, Err: err}
	}
	return text, nil
}

func (o *Orchestrator) missing(side Side, what string) error {
	return &Error{Kind: KindMissingCombatant, Side: side, Err: fmt.Errorf("%w: %s is required", model.ErrValidation, what)}
}

// finish records metrics and logs the end of a battle.
func (o *Orchestrator) finish(ctx context.Context, id, mode string, start time.Time, out *model.BattleOutcome, err error) {
	elapsed := time.Since(start)
	log := o.log.With(logger.String("battle_id", id), logger.String("mode", mode))
	switch {
	case err != nil:
		metrics.RecordBattle(mode, outcomeFailed, elapsed)
		fields := []logger.Field{logger.String("kind", string(KindOf(err))), logger.Duration("elapsed", elapsed), logger.Error(err)}
		var be *Error
		if errors.As(err, &be) && be.Side != "" {
			fields = append(fields, logger.String("side", string(be.Side)))
		}
		log.Error(ctx, "battle failed", fields...)
	case out != nil && out.Degraded:
		metrics.RecordBattle(mode, outcomeDegraded, elapsed)
		log.Warn(ctx, "battle completed without a parsable verdict", logger.Duration("elapsed", elapsed))
	default:
		metrics.RecordBattle(mode, outcomeCompleted, elapsed)
		if out != nil && out.Decided() {
			metrics.RecordScoreSpread(out.Spread())
			log.Info(ctx, "battle completed",
				logger.String("winner", out.Winner),
				logger.Int("winnerScore", out.WinnerScore),
				logger.Int("loserScore", out.LoserScore),
				logger.Duration("elapsed", elapsed))
			return
		}
		log.Info(ctx, "battle completed", logger.Duration("elapsed", elapsed))
	}
}
