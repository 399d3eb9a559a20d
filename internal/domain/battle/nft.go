package battle

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/devxbattle/internal/adapters/llm"
	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/internal/domain/prompt"
	"github.com/okian/devxbattle/internal/domain/verdict"
)

// NFTSummary is what the caller sees of each NFT.
type NFTSummary struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Score int    `json:"score"`
}

// NFTResult is a resolved NFT battle. Left and Right keep request order.
type NFTResult struct {
	Outcome       model.BattleOutcome
	LeftIdentity  string
	RightIdentity string
	Left          NFTSummary
	Right         NFTSummary
}

// NFT battles two token metadata documents. Scores come from the scorer;
// the generated text is used verbatim as the narrative. A tie goes to the
// right side.
func (o *Orchestrator) NFT(ctx context.Context, left, right model.Combatant) (res NFTResult, err error) {
	id, start := o.newID(), time.Now()
	mode := string(model.ModeNFT)
	defer func() { o.finish(ctx, id, mode, start, &res.Outcome, err) }()

	switch {
	case left.TokenURI == "":
		return NFTResult{}, o.missing(SideLeft, "nftUri1")
	case right.TokenURI == "":
		return NFTResult{}, o.missing(SideRight, "nftUri2")
	}

	var sets [2]model.NFTAttributeSet
	err = o.bothSides(ctx, func(ctx context.Context, side Side) error {
		c, i := left, 0
		if side == SideRight {
			c, i = right, 1
		}
		set, err := o.metadata.FetchMetadata(ctx, c.TokenURI)
		sets[i] = set
		return err
	})
	if err != nil {
		return NFTResult{}, err
	}

	s1, s2 := o.scorer.ScoreNFT(sets[0]), o.scorer.ScoreNFT(sets[1])
	n1 := identity(left.Identity, sets[0].Name, "NFT 1")
	n2 := identity(right.Identity, sets[1].Name, "NFT 2")

	raw, err := o.generate(ctx, llm.Request{
		Prompt: prompt.NFTBattle(
			prompt.NFTSide{Attributes: sets[0], Score: s1},
			prompt.NFTSide{Attributes: sets[1], Score: s2},
		),
		MaxTokens: o.maxTokens,
		Model:     o.nftModel,
	})
	if err != nil {
		return NFTResult{}, err
	}
	v := verdict.Verbatim(raw)

	out := model.BattleOutcome{
		ID:          id,
		Mode:        model.ModeNFT,
		Winner:      n2,
		Loser:       n1,
		WinnerScore: s2,
		LoserScore:  s1,
		Narrative:   v.Narrative,
		CreatedAt:   o.now(),
	}
	if s1 > s2 {
		out.Winner, out.Loser = n1, n2
		out.WinnerScore, out.LoserScore = s1, s2
	}

	return NFTResult{
		Outcome:       out,
		LeftIdentity:  n1,
		RightIdentity: n2,
		Left:          NFTSummary{Name: sets[0].Name, Image: sets[0].ImageURI, Score: s1},
		Right:         NFTSummary{Name: sets[1].Name, Image: sets[1].ImageURI, Score: s2},
	}, nil
}

// RoastChallenger is the attacking side of a roast; its attributes come with
// the request.
type RoastChallenger struct {
	Username   string
	Attributes []model.NFTAttribute
}

// RoastDefender is identified by wallet; its first owned token is looked up.
type RoastDefender struct {
	Username      string
	WalletAddress string
}

// RoastResult is the raw roast and the names it was built for.
type RoastResult struct {
	ID            string
	Narrative     string
	Challenger    string
	Defender      string
	DefenderToken model.NFTToken
}

// Roast looks up the defender's first token and asks for a short roast
// between the two NFTs. The text is returned unparsed.
func (o *Orchestrator) Roast(ctx context.Context, ch RoastChallenger, def RoastDefender) (res RoastResult, err error) {
	id, start := o.newID(), time.Now()
	defer func() { o.finish(ctx, id, modeRoast, start, nil, err) }()

	if def.WalletAddress == "" {
		return RoastResult{}, o.missing(SideRight, "defender.walletAddress")
	}
	defender := identity(def.Username, def.WalletAddress, "")
	challenger := identity(ch.Username, "", "challenger")

	fctx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	tok, set, err := o.tokens.FirstToken(fctx, def.WalletAddress)
	cancel()
	if err != nil {
		return RoastResult{}, &Error{Kind: KindCombatantDataUnavailable, Side: SideRight, Err: fmt.Errorf("defender %s: %w", def.WalletAddress, err)}
	}

	raw, err := o.generate(ctx, llm.Request{
		Prompt:    prompt.Roast(challenger, ch.Attributes, defender, set.Attributes),
		MaxTokens: o.roastMaxTokens,
		Model:     o.nftModel,
	})
	if err != nil {
		return RoastResult{}, err
	}
	return RoastResult{
		ID:            id,
		Narrative:     raw,
		Challenger:    ch.Username,
		Defender:      def.Username,
		DefenderToken: tok,
	}, nil
}

func identity(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
