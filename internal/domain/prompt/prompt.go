// Package prompt builds the text sent to the narrative generator.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/devxbattle/internal/domain/model"
)

// GitHubBattle asks for a sarcastic comparison that opens with the result line
// understood by verdict.ParseHeader.
func GitHubBattle(left, right string, p1, p2 model.GitHubProfile) string {
	var b strings.Builder
	b.WriteString("Compare the following GitHub profiles and declare a winner and loser with a harsh and sarcastic tone:\n\n")
	fmt.Fprintf(&b, "**%s**: %s\n", left, toJSON(p1))
	fmt.Fprintf(&b, "**%s**: %s\n\n", right, toJSON(p2))
	b.WriteString("Respond in the following format:\n")
	b.WriteString("Winner: [username] (Score: X/100) | Loser: [username] (Score: Y/100)\n")
	b.WriteString("[Your harsh, sarcastic roast comparing the two users in about 100 words]\n")
	b.WriteString("X must be higher than Y.")
	return b.String()
}

// NFTSide is one NFT as presented to the generator.
type NFTSide struct {
	Attributes model.NFTAttributeSet
	Score      int
}

// NFTBattle asks for a dramatized battle story. Scores are already decided,
// so no result line is requested.
func NFTBattle(n1, n2 NFTSide) string {
	var b strings.Builder
	b.WriteString("Create an epic battle narrative between these two NFTs:\n\n")
	writeNFT(&b, 1, n1)
	b.WriteString("\n")
	writeNFT(&b, 2, n2)
	b.WriteString("\nCreate a dramatic battle story in about 100 words. Make it entertaining and reference their attributes.")
	return b.String()
}

func writeNFT(b *strings.Builder, n int, side NFTSide) {
	fmt.Fprintf(b, "NFT %d (%s):\n", n, side.Attributes.Name)
	fmt.Fprintf(b, "Attributes: %s\n", toJSON(attributes(side.Attributes)))
	fmt.Fprintf(b, "Score: %d\n", side.Score)
}

// Roast asks for a short roast where one NFT owner mocks the other.
func Roast(challenger string, challengerAttrs []model.NFTAttribute, defender string, defenderAttrs []model.NFTAttribute) string {
	var b strings.Builder
	b.WriteString("Based on these two NFTs and their attributes, create a short brutal roast (max 100 words) where one NFT mocks the other:\n\n")
	fmt.Fprintf(&b, "Challenger (%s):\nAttributes: %s\n\n", challenger, toJSON(nonNil(challengerAttrs)))
	fmt.Fprintf(&b, "Defender (%s):\nAttributes: %s\n\n", defender, toJSON(nonNil(defenderAttrs)))
	b.WriteString("Format the response as:\n")
	b.WriteString("Winner: [username]\n")
	b.WriteString("Roast: [brutal but funny roast from winner to loser]")
	return b.String()
}

func attributes(set model.NFTAttributeSet) []model.NFTAttribute {
	return nonNil(set.Attributes)
}

func nonNil(attrs []model.NFTAttribute) []model.NFTAttribute {
	if attrs == nil {
		return []model.NFTAttribute{}
	}
	return attrs
}

// toJSON never fails for the model types it is given; a marshal error is
// rendered inline rather than dropped.
func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unavailable: %v>", err)
	}
	return string(b)
}
