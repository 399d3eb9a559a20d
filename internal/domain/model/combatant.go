// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Mode selects how a battle gathers data and decides its winner.
type Mode string

const (
	// ModeGitHub battles two GitHub profiles; the generator declares the winner.
	ModeGitHub Mode = "github"
	// ModeNFT battles two token metadata documents scored algorithmically.
	ModeNFT Mode = "nft"
)

// ParseMode maps the request's type parameter to a Mode. An empty value means
// a GitHub battle; "1v1" is accepted as the legacy name for it.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "github", "1v1":
		return ModeGitHub, nil
	case "nft":
		return ModeNFT, nil
	default:
		return "", fmt.Errorf("%w: unknown battle type %q", ErrValidation, s)
	}
}

// AttributeSource names where a combatant's attributes come from.
type AttributeSource string

const (
	SourceGitHubProfile AttributeSource = "github_profile"
	SourceNFTMetadata   AttributeSource = "nft_metadata"
)

// Combatant is one side of a battle. Identity is a GitHub username or a
// display name/wallet address; TokenURI is only set for NFT battles.
type Combatant struct {
	Identity string
	Source   AttributeSource
	TokenURI string
}

// GitHubCombatant builds the combatant for a GitHub profile battle.
func GitHubCombatant(username string) Combatant {
	return Combatant{Identity: strings.TrimSpace(username), Source: SourceGitHubProfile}
}

// NFTCombatant builds the combatant for an NFT battle.
func NFTCombatant(identity, tokenURI string) Combatant {
	return Combatant{
		Identity: strings.TrimSpace(identity),
		Source:   SourceNFTMetadata,
		TokenURI: strings.TrimSpace(tokenURI),
	}
}
