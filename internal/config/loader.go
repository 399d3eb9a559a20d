package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "DEVX_"
	envConfig  = "DEVX_CONFIG"
	envDotenv  = "DEVX_DOTENV"
	dotenvFile = ".env"
)

var (
	llmProviders = []string{"anthropic", "openai", "gemini", "fake"}
	storeDrivers = []string{"memory", "mongo", "postgres"}
	logFormats   = []string{"text", "json"}
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if DEVX_CONFIG is set
//  3. env (prefix DEVX_), after a .env file (DEVX_DOTENV or ./.env) is
//     merged into the process environment without overriding it
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	if err := loadDotenv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// DEVX_GITHUB_API_URL -> github_api_url (flat keys, underscores kept).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	path := os.Getenv(envDotenv)
	if path == "" {
		path = dotenvFile
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) normalize() {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains(llmProviders, c.LLMProvider):
		return fmt.Errorf("%w: llm_provider must be one of %v, got %q", ErrInvalidConfig, llmProviders, c.LLMProvider)
	case !slices.Contains(storeDrivers, c.StoreDriver):
		return fmt.Errorf("%w: store_driver must be one of %v, got %q", ErrInvalidConfig, storeDrivers, c.StoreDriver)
	case !slices.Contains(logFormats, c.LogFormat):
		return fmt.Errorf("%w: log_format must be one of %v, got %q", ErrInvalidConfig, logFormats, c.LogFormat)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.GenerationTimeoutMS <= 0:
		return fmt.Errorf("%w: generation_timeout_ms must be positive", ErrInvalidConfig)
	case c.MaxTokens <= 0 || c.RoastMaxTokens <= 0:
		return fmt.Errorf("%w: max_tokens and roast_max_tokens must be positive", ErrInvalidConfig)
	case c.StoreDriver == "mongo" && c.MongoURI == "":
		return fmt.Errorf("%w: mongo_uri is required for the mongo store", ErrInvalidConfig)
	case c.StoreDriver == "postgres" && c.PostgresDSN == "":
		return fmt.Errorf("%w: postgres_dsn is required for the postgres store", ErrInvalidConfig)
	}
	return nil
}
