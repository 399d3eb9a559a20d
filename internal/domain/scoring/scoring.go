// Package scoring maps combatant attributes to a bounded battle score.
package scoring

import (
	"math"
	"unicode/utf8"

	"github.com/okian/devxbattle/internal/domain/model"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Scorer computes a battle score for an NFT's attributes.
type Scorer interface {
	ScoreNFT(set model.NFTAttributeSet) int
}

// AttributeScorer is the default Scorer.
type AttributeScorer struct{}

// NewAttributeScorer returns the default Scorer.
func NewAttributeScorer() *AttributeScorer {
	return &AttributeScorer{}
}

// ScoreNFT implements Scorer.
func (AttributeScorer) ScoreNFT(set model.NFTAttributeSet) int {
	return NFT(set)
}

// NFT sums numeric attribute values as-is and the character length of string
// values, rounds, and clamps the total to [MinScore, MaxScore]. Values that are
// neither contribute nothing.
func NFT(set model.NFTAttributeSet) int {
	var total float64
	for _, attr := range set.Attributes {
		total += attributeWeight(attr.Value)
	}
	return clamp(total)
}

func attributeWeight(v model.AttributeValue) float64 {
	if n, ok := v.Number(); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	}
	if s, ok := v.Text(); ok {
		return float64(utf8.RuneCountInString(s))
	}
	return 0
}

func clamp(total float64) int {
	rounded := math.Round(total)
	switch {
	case rounded > MaxScore:
		return MaxScore
	case rounded < MinScore:
		return MinScore
	default:
		return int(rounded)
	}
}
