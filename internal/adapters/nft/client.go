// Package nft reads token ownership from an Aptos indexer and token metadata
// from the URIs it reports.
package nft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/pkg/logger"
	"github.com/okian/devxbattle/pkg/metrics"
)

const (
	DefaultIndexerURL  = "https://api.testnet.aptoslabs.com/v1/graphql"
	DefaultIPFSGateway = "https://ipfs.io/ipfs/"

	maxBodyBytes = 2 << 20
)

const ownershipQuery = `query TokenOwnerships($where: current_token_ownerships_v2_bool_exp) {
  current_token_ownerships_v2(offset: 0, where: $where) {
    owner_address
    current_token_data {
      collection_id
      token_name
      token_uri
    }
  }
}`

// Client queries the indexer and fetches metadata documents.
type Client struct {
	indexerURL  string
	ipfsGateway string
	http        *http.Client
	log         logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithIndexerURL sets the GraphQL endpoint.
func WithIndexerURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.indexerURL = u
		}
	}
}

// WithIPFSGateway sets the gateway ipfs:// URIs are rewritten to.
func WithIPFSGateway(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.ipfsGateway = strings.TrimRight(u, "/") + "/"
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		indexerURL:  DefaultIndexerURL,
		ipfsGateway: DefaultIPFSGateway,
		http:        http.DefaultClient,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("nft")
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type ownershipResponse struct {
	Data struct {
		Ownerships []struct {
			OwnerAddress string `json:"owner_address"`
			TokenData    *struct {
				CollectionID string `json:"collection_id"`
				TokenName    string `json:"token_name"`
				TokenURI     string `json:"token_uri"`
			} `json:"current_token_data"`
		} `json:"current_token_ownerships_v2"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchOwnership lists tokens owned by wallet, optionally restricted to one
// collection. An empty result is ErrNoTokensFound.
func (c *Client) FetchOwnership(ctx context.Context, wallet, collectionID string) (tokens []model.NFTToken, err error) {
	start := time.Now()
	defer func() { c.record(ctx, "nft_indexer", start, err) }()

	where := map[string]any{"owner_address": map[string]any{"_eq": wallet}}
	if collectionID != "" {
		where["current_token_data"] = map[string]any{"collection_id": map[string]any{"_eq": collectionID}}
	}
	body, err := json.Marshal(graphQLRequest{Query: ownershipQuery, Variables: map[string]any{"where": where}})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexer, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.indexerURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexer, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexer, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrIndexer, resp.StatusCode)
	}

	var out ownershipResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %w", ErrIndexer, err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIndexer, out.Errors[0].Message)
	}

	for _, o := range out.Data.Ownerships {
		if o.TokenData == nil {
			continue
		}
		tokens = append(tokens, model.NFTToken{
			OwnerAddress: o.OwnerAddress,
			CollectionID: o.TokenData.CollectionID,
			TokenName:    o.TokenData.TokenName,
			TokenURI:     o.TokenData.TokenURI,
		})
	}
	if len(tokens) == 0 {
		return nil, ErrNoTokensFound
	}
	return tokens, nil
}

// FetchMetadata loads the metadata document at uri. ipfs:// URIs go through
// the configured gateway. Every failure is ErrMetadataFetch.
func (c *Client) FetchMetadata(ctx context.Context, uri string) (set model.NFTAttributeSet, err error) {
	start := time.Now()
	defer func() { c.record(ctx, "nft_metadata", start, err) }()

	target, err := c.resolve(uri)
	if err != nil {
		return model.NFTAttributeSet{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.NFTAttributeSet{}, fmt.Errorf("%w: %w", ErrMetadataFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.NFTAttributeSet{}, fmt.Errorf("%w: %w", ErrMetadataFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.NFTAttributeSet{}, fmt.Errorf("%w: status %d", ErrMetadataFetch, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&set); err != nil {
		return model.NFTAttributeSet{}, fmt.Errorf("%w: %w", ErrMetadataFetch, err)
	}
	return set, nil
}

// FirstToken returns the first token owned by wallet with its metadata.
func (c *Client) FirstToken(ctx context.Context, wallet string) (model.NFTToken, model.NFTAttributeSet, error) {
	tokens, err := c.FetchOwnership(ctx, wallet, "")
	if err != nil {
		return model.NFTToken{}, model.NFTAttributeSet{}, err
	}
	tok := tokens[0]
	set, err := c.FetchMetadata(ctx, tok.TokenURI)
	if err != nil {
		return tok, model.NFTAttributeSet{}, err
	}
	return tok, set, nil
}

func (c *Client) resolve(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if rest, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return c.ipfsGateway + strings.TrimPrefix(rest, "ipfs/"), nil
	}
	u, err := url.Parse(uri)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: unsupported uri %q", ErrMetadataFetch, uri)
	}
	return uri, nil
}

func (c *Client) record(ctx context.Context, source string, start time.Time, err error) {
	failure := ""
	if err != nil {
		failure = "upstream"
		if errors.Is(err, ErrNoTokensFound) {
			failure = "not_found"
		}
		c.log.Warn(ctx, "fetch failed", logger.String("source", source), logger.Error(err))
	}
	metrics.RecordFetch(source, time.Since(start), failure)
}
