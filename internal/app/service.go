// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/devxbattle/internal/adapters/github"
	"github.com/okian/devxbattle/internal/adapters/llm"
	"github.com/okian/devxbattle/internal/adapters/nft"
	"github.com/okian/devxbattle/internal/adapters/objectstore"
	"github.com/okian/devxbattle/internal/adapters/repository"
	"github.com/okian/devxbattle/internal/config"
	"github.com/okian/devxbattle/internal/domain/battle"
	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/pkg/logger"
)

// ErrNotStarted is returned by every operation before Start.
var ErrNotStarted = errors.New("service not started")

// NFTFetcher covers both NFT lookups the battles need.
type NFTFetcher interface {
	battle.MetadataFetcher
	battle.TokenFetcher
}

// Service implements the API dependencies for DevX Battle.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Collaborators. Anything left nil is built from cfg in Start.
	profiles  battle.ProfileFetcher
	nfts      NFTFetcher
	generator llm.Generator
	users     repository.Store
	objects   objectstore.Store

	orchestrator *battle.Orchestrator

	// State
	started      bool
	startedAt    time.Time
	ownsUsers    bool
	battleCount  int64
	failureCount int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration collaborators are built from.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProfileFetcher replaces the GitHub client.
func WithProfileFetcher(p battle.ProfileFetcher) Option {
	return func(s *Service) {
		s.profiles = p
	}
}

// WithNFTFetcher replaces the NFT indexer and metadata client.
func WithNFTFetcher(n NFTFetcher) Option {
	return func(s *Service) {
		s.nfts = n
	}
}

// WithGenerator replaces the configured narrative generator.
func WithGenerator(g llm.Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithUserStore replaces the configured user store.
func WithUserStore(st repository.Store) Option {
	return func(s *Service) {
		s.users = st
	}
}

// WithObjectStore replaces the configured SBT metadata store.
func WithObjectStore(o objectstore.Store) Option {
	return func(s *Service) {
		s.objects = o
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(context.Background()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds every collaborator not injected through options.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	cfg := s.cfg
	s.logger.Info(ctx, "starting battle service...")

	if s.profiles == nil {
		s.profiles = github.New(
			github.WithAPIURL(cfg.GitHubAPIURL),
			github.WithRawURL(cfg.GitHubRawURL),
			github.WithToken(cfg.GitHubToken),
			github.WithLogger(s.logger.Named("github")),
		)
	}
	if s.nfts == nil {
		s.nfts = nft.New(
			nft.WithIndexerURL(cfg.IndexerURL),
			nft.WithIPFSGateway(cfg.IPFSGateway),
			nft.WithLogger(s.logger.Named("nft")),
		)
	}
	if s.generator == nil {
		g, err := llm.New(ctx, llm.Config{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.LLMAPIKey,
			BaseURL:  cfg.LLMBaseURL,
		})
		if err != nil {
			return fmt.Errorf("build generator: %w", err)
		}
		s.generator = g
	}
	if s.objects == nil {
		o, err := s.openObjectStore()
		if err != nil {
			return err
		}
		s.objects = o
	}
	if s.users == nil {
		st, err := repository.Open(ctx, repository.Config{
			Driver:        cfg.StoreDriver,
			MongoURI:      cfg.MongoURI,
			MongoDatabase: cfg.MongoDatabase,
			PostgresDSN:   cfg.PostgresDSN,
		}, repository.WithLogger(s.logger.Named("repository")))
		if err != nil {
			return fmt.Errorf("open user store: %w", err)
		}
		s.users = st
		s.ownsUsers = true
	}

	orch, err := battle.New(battle.Dependencies{
		Profiles:  s.profiles,
		Metadata:  s.nfts,
		Tokens:    s.nfts,
		Generator: llm.Instrument(s.generator, s.logger),
	},
		battle.WithFetchTimeout(cfg.FetchTimeout()),
		battle.WithGenerationTimeout(cfg.GenerationTimeout()),
		battle.WithMaxTokens(cfg.MaxTokens),
		battle.WithRoastMaxTokens(cfg.RoastMaxTokens),
		battle.WithModels(cfg.GitHubModel, cfg.NFTModel),
		battle.WithLogger(s.logger.Named("battle")),
	)
	if err != nil {
		s.closeUsers(ctx)
		return fmt.Errorf("build orchestrator: %w", err)
	}
	s.orchestrator = orch

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "battle service started",
		logger.String("llmProvider", s.generator.Name()),
		logger.String("storeDriver", s.users.Driver()),
		logger.Bool("sbtUploads", s.objects.Enabled()),
	)
	return nil
}

func (s *Service) openObjectStore() (objectstore.Store, error) {
	cfg := s.cfg
	if !cfg.ObjectStoreEnabled() {
		return objectstore.Disabled{}, nil
	}
	o, err := objectstore.NewS3Store(objectstore.S3Config{
		Endpoint:  cfg.ObjectStoreEndpoint,
		Region:    cfg.ObjectStoreRegion,
		AccessKey: cfg.ObjectStoreAccessKey,
		SecretKey: cfg.ObjectStoreSecretKey,
		Bucket:    cfg.ObjectStoreBucket,
		UseSSL:    cfg.ObjectStoreUseSSL,
		PublicURL: cfg.ObjectStorePublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	return o, nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info(ctx, "stopping battle service...")
	s.closeUsers(ctx)
	s.started = false
	s.logger.Info(ctx, "battle service stopped")
}

// closeUsers closes a store opened by Start. Injected stores belong to
// the caller.
func (s *Service) closeUsers(ctx context.Context) {
	if !s.ownsUsers {
		return
	}
	if err := s.users.Close(ctx); err != nil {
		s.logger.Warn(ctx, "close user store", logger.Error(err))
	}
	s.users = nil
	s.ownsUsers = false
}

func (s *Service) ready() (*battle.Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.orchestrator, nil
}

// userStore returns the store under the lock so a concurrent Stop cannot
// swap it out from under a running request.
func (s *Service) userStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.users == nil {
		return nil, ErrNotStarted
	}
	return s.users, nil
}

func (s *Service) count(err error) {
	s.mu.Lock()
	s.battleCount++
	if err != nil {
		s.failureCount++
	}
	s.mu.Unlock()
}

// GitHubBattle runs a GitHub profile battle.
func (s *Service) GitHubBattle(ctx context.Context, username1, username2 string) (battle.GitHubResult, error) {
	o, err := s.ready()
	if err != nil {
		return battle.GitHubResult{}, err
	}
	res, err := o.GitHub(ctx, username1, username2)
	s.count(err)
	return res, err
}

// NFTBattle runs an NFT metadata battle.
func (s *Service) NFTBattle(ctx context.Context, left, right model.Combatant) (battle.NFTResult, error) {
	o, err := s.ready()
	if err != nil {
		return battle.NFTResult{}, err
	}
	res, err := o.NFT(ctx, left, right)
	s.count(err)
	return res, err
}

// RoastBattle runs a roast against the defender's first owned token.
func (s *Service) RoastBattle(ctx context.Context, ch battle.RoastChallenger, def battle.RoastDefender) (battle.RoastResult, error) {
	o, err := s.ready()
	if err != nil {
		return battle.RoastResult{}, err
	}
	res, err := o.Roast(ctx, ch, def)
	s.count(err)
	return res, err
}

// Profile returns the normalized GitHub profile shown on the dashboard.
func (s *Service) Profile(ctx context.Context, username string) (model.GitHubProfile, error) {
	if _, err := s.ready(); err != nil {
		return model.GitHubProfile{}, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return model.GitHubProfile{}, fmt.Errorf("%w: username is required", model.ErrValidation)
	}
	return s.profiles.FetchAll(ctx, username)
}

// Authenticate returns the user owning wallet, registering one when none
// exists. created reports whether a new user was stored.
func (s *Service) Authenticate(ctx context.Context, username, wallet string) (u model.User, created bool, err error) {
	users, err := s.userStore()
	if err != nil {
		return model.User{}, false, err
	}
	u, err = users.FindByWallet(ctx, wallet)
	switch {
	case err == nil:
		return u, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return model.User{}, false, err
	}
	u, err = users.Create(ctx, model.User{Username: username, WalletAddress: wallet})
	if err != nil {
		return model.User{}, false, err
	}
	s.logger.Info(ctx, "user registered", logger.String("username", u.Username))
	return u, true, nil
}

// SignUp creates a user. Username, user id and wallet are required.
func (s *Service) SignUp(ctx context.Context, u model.User) (model.User, error) {
	users, err := s.userStore()
	if err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(u.UserID) == "" {
		return model.User{}, fmt.Errorf("%w: userId is required", model.ErrValidation)
	}
	return users.Create(ctx, u)
}

// Login finds a user by username, or by wallet when no username is given.
func (s *Service) Login(ctx context.Context, username, wallet string) (model.User, error) {
	users, err := s.userStore()
	if err != nil {
		return model.User{}, err
	}
	username, wallet = strings.TrimSpace(username), strings.TrimSpace(wallet)
	switch {
	case username != "":
		return users.FindByUsername(ctx, username)
	case wallet != "":
		return users.FindByWallet(ctx, wallet)
	default:
		return model.User{}, fmt.Errorf("%w: username or wallet address is required", model.ErrValidation)
	}
}

// RecordSBT uploads the SBT metadata for wallet and stores the token
// address on the user. It returns the updated user and the metadata URI.
func (s *Service) RecordSBT(ctx context.Context, wallet, sbtAddress string, metadata json.RawMessage) (model.User, string, error) {
	users, err := s.userStore()
	if err != nil {
		return model.User{}, "", err
	}
	if !s.objects.Enabled() {
		return model.User{}, "", objectstore.ErrDisabled
	}
	if _, err := users.FindByWallet(ctx, wallet); err != nil {
		return model.User{}, "", err
	}
	key, err := objectstore.SBTKey(wallet)
	if err != nil {
		return model.User{}, "", err
	}
	if !json.Valid(metadata) {
		return model.User{}, "", fmt.Errorf("%w: metadata must be a JSON document", model.ErrValidation)
	}
	uri, err := s.objects.PutJSON(ctx, key, metadata)
	if err != nil {
		return model.User{}, "", err
	}
	u, err := users.SetSBTAddress(ctx, wallet, sbtAddress)
	if err != nil {
		return model.User{}, "", err
	}
	s.logger.Info(ctx, "sbt recorded",
		logger.String("username", u.Username),
		logger.String("metadataUri", uri),
	)
	return u, uri, nil
}

// ListSBTHolders returns every user holding an SBT.
func (s *Service) ListSBTHolders(ctx context.Context) ([]model.User, error) {
	users, err := s.userStore()
	if err != nil {
		return nil, err
	}
	return users.ListWithSBT(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":  s.started,
		"battles":  s.battleCount,
		"failures": s.failureCount,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["llmProvider"] = s.generator.Name()
		stats["storeDriver"] = s.users.Driver()
		stats["sbtUploads"] = s.objects.Enabled()
	}
	return stats
}
