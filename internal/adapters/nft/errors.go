package nft

import (
	"fmt"

	"github.com/okian/devxbattle/internal/domain/model"
)

var (
	// ErrNoTokensFound is returned when a wallet owns no matching tokens.
	ErrNoTokensFound = fmt.Errorf("%w: no NFTs found for wallet", model.ErrNotFound)
	// ErrMetadataFetch is returned for any failure to load token metadata.
	ErrMetadataFetch = fmt.Errorf("%w: could not fetch NFT metadata", model.ErrUpstream)
	// ErrIndexer is returned for indexer transport, status and GraphQL errors.
	ErrIndexer = fmt.Errorf("%w: nft indexer", model.ErrUpstream)
)
