// Package config defines service configuration and how it is loaded.
//
// Conventions:
// - Flat snake_case keys shared by YAML files and DEVX_* env vars.
// - New(ctx) returns defaults; Load(ctx) layers file and env on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// GitHub REST API and raw content hosts.
	GitHubAPIURL string `koanf:"github_api_url"`
	GitHubRawURL string `koanf:"github_raw_url"`
	GitHubToken  string `koanf:"github_token"`

	// IndexerURL is the Aptos indexer GraphQL endpoint used for NFT ownership.
	IndexerURL  string `koanf:"indexer_url"`
	IPFSGateway string `koanf:"ipfs_gateway"`

	// FetchTimeoutMS bounds each side's data fetch in a battle.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// LLMProvider is one of anthropic, openai, gemini, fake.
	LLMProvider string `koanf:"llm_provider"`
	LLMAPIKey   string `koanf:"llm_api_key"`
	// LLMBaseURL points the provider SDK at a proxy or compatible endpoint.
	LLMBaseURL string `koanf:"llm_base_url"`
	// GitHubModel and NFTModel pick the model per battle mode; empty means the
	// provider default.
	GitHubModel         string `koanf:"github_model"`
	NFTModel            string `koanf:"nft_model"`
	MaxTokens           int    `koanf:"max_tokens"`
	RoastMaxTokens      int    `koanf:"roast_max_tokens"`
	GenerationTimeoutMS int    `koanf:"generation_timeout_ms"`

	// StoreDriver is one of memory, mongo, postgres.
	StoreDriver   string `koanf:"store_driver"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
	PostgresDSN   string `koanf:"postgres_dsn"`

	// Object storage for SBT metadata. An empty endpoint disables uploads.
	ObjectStoreEndpoint  string `koanf:"objectstore_endpoint"`
	ObjectStoreAccessKey string `koanf:"objectstore_access_key"`
	ObjectStoreSecretKey string `koanf:"objectstore_secret_key"`
	ObjectStoreBucket    string `koanf:"objectstore_bucket"`
	ObjectStoreRegion    string `koanf:"objectstore_region"`
	ObjectStoreUseSSL    bool   `koanf:"objectstore_use_ssl"`
	ObjectStorePublicURL string `koanf:"objectstore_public_url"`
}

// New returns a Config holding defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		GitHubAPIURL:        "https://api.github.com",
		GitHubRawURL:        "https://raw.githubusercontent.com",
		IndexerURL:          "https://api.testnet.aptoslabs.com/v1/graphql",
		IPFSGateway:         "https://ipfs.io/ipfs/",
		FetchTimeoutMS:      10_000,
		LLMProvider:         "anthropic",
		MaxTokens:           1000,
		RoastMaxTokens:      150,
		GenerationTimeoutMS: 60_000,
		StoreDriver:         "memory",
		MongoDatabase:       "devx",
		ObjectStoreBucket:   "devx-sbt",
	}
}

// FetchTimeout is FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// GenerationTimeout is GenerationTimeoutMS as a duration.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutMS) * time.Millisecond
}

// ObjectStoreEnabled reports whether SBT metadata uploads are configured.
func (c *Config) ObjectStoreEnabled() bool {
	return c.ObjectStoreEndpoint != ""
}
