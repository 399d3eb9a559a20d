package battle

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/devxbattle/internal/adapters/llm"
	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/internal/domain/prompt"
	"github.com/okian/devxbattle/internal/domain/verdict"
	"github.com/okian/devxbattle/pkg/logger"
	"github.com/okian/devxbattle/pkg/metrics"
)

// GitHubResult is a resolved GitHub battle with both fetched profiles.
type GitHubResult struct {
	Outcome model.BattleOutcome
	Left    model.GitHubProfile
	Right   model.GitHubProfile
}

// GitHub battles two GitHub users. The generator declares winner and scores;
// output that does not follow the result convention yields a degraded
// outcome rather than an error.
func (o *Orchestrator) GitHub(ctx context.Context, left, right string) (res GitHubResult, err error) {
	id, start := o.newID(), time.Now()
	mode := string(model.ModeGitHub)
	defer func() { o.finish(ctx, id, mode, start, &res.Outcome, err) }()

	l, r := model.GitHubCombatant(left), model.GitHubCombatant(right)
	switch {
	case l.Identity == "":
		return GitHubResult{}, o.missing(SideLeft, "username1")
	case r.Identity == "":
		return GitHubResult{}, o.missing(SideRight, "username2")
	}

	var profiles [2]model.GitHubProfile
	err = o.bothSides(ctx, func(ctx context.Context, side Side) error {
		c, i := l, 0
		if side == SideRight {
			c, i = r, 1
		}
		p, err := o.profiles.FetchAll(ctx, c.Identity)
		profiles[i] = p
		return err
	})
	if err != nil {
		return GitHubResult{}, err
	}

	raw, err := o.generate(ctx, llm.Request{
		Prompt:    prompt.GitHubBattle(l.Identity, r.Identity, profiles[0], profiles[1]),
		MaxTokens: o.maxTokens,
		Model:     o.githubModel,
	})
	if err != nil {
		return GitHubResult{}, err
	}

	v := verdict.ParseHeader(raw).Bind(l.Identity, r.Identity, raw)
	if !v.Matched {
		metrics.RecordParseMismatch(mode)
		o.log.Warn(ctx, "generator ignored the result convention",
			logger.String("battle_id", id),
			logger.String("head", head(raw)))
	}

	return GitHubResult{
		Outcome: model.BattleOutcome{
			ID:          id,
			Mode:        model.ModeGitHub,
			Winner:      v.Winner,
			Loser:       v.Loser,
			WinnerScore: v.WinnerScore,
			LoserScore:  v.LoserScore,
			Narrative:   v.Narrative,
			Degraded:    !v.Matched,
			CreatedAt:   o.now(),
		},
		Left:  profiles[0],
		Right: profiles[1],
	}, nil
}

// headLen caps the logged first line of an unparsed reply, in bytes.
const headLen = 80

func head(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len(line) <= headLen {
		return line
	}
	cut := headLen
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut]
}
