// Package github fetches the public profile data used in GitHub battles.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/pkg/logger"
	"github.com/okian/devxbattle/pkg/metrics"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"

	userAgent     = "devxbattle"
	maxBodyBytes  = 4 << 20
	metricSource  = "github"
	failNotFound  = "not_found"
	failUpstream  = "upstream"
	failMalformed = "malformed"
)

// Client talks to the GitHub REST API and the raw content host.
type Client struct {
	apiURL string
	rawURL string
	token  string
	http   *http.Client
	log    logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the REST base URL.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.apiURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRawURL overrides the host serving profile READMEs.
func WithRawURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.rawURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sends a bearer token, raising the API rate limit.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client with public GitHub defaults.
func New(opts ...Option) *Client {
	c := &Client{
		apiURL: DefaultAPIURL,
		rawURL: DefaultRawURL,
		http:   http.DefaultClient,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("github")
	return c
}

type userResponse struct {
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	AvatarURL   string  `json:"avatar_url"`
	Bio         *string `json:"bio"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
	PublicRepos int     `json:"public_repos"`
}

type repoResponse struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Language        *string `json:"language"`
	StargazersCount int     `json:"stargazers_count"`
	OpenIssuesCount int     `json:"open_issues_count"`
	Fork            bool    `json:"fork"`
}

// FetchProfile returns the user's profile without repositories or README.
func (c *Client) FetchProfile(ctx context.Context, username string) (model.GitHubProfile, error) {
	var u userResponse
	if err := c.getJSON(ctx, c.apiURL+"/users/"+url.PathEscape(username), &u); err != nil {
		return model.GitHubProfile{}, fmt.Errorf("profile %q: %w", username, err)
	}
	if u.Login == "" {
		return model.GitHubProfile{}, fmt.Errorf("profile %q: %w: missing login", username, ErrMalformedResponse)
	}
	return model.GitHubProfile{
		Login:           u.Login,
		Name:            deref(u.Name),
		AvatarURL:       u.AvatarURL,
		Bio:             deref(u.Bio),
		Company:         deref(u.Company),
		Location:        deref(u.Location),
		Followers:       nonNegative(u.Followers),
		Following:       nonNegative(u.Following),
		PublicRepoCount: nonNegative(u.PublicRepos),
	}, nil
}

// FetchRepositories returns the most recently updated repositories, at most
// model.MaxRepositories of them.
func (c *Client) FetchRepositories(ctx context.Context, username string) ([]model.RepoSummary, error) {
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", fmt.Sprint(model.MaxRepositories))
	endpoint := c.apiURL + "/users/" + url.PathEscape(username) + "/repos?" + q.Encode()

	var repos []repoResponse
	if err := c.getJSON(ctx, endpoint, &repos); err != nil {
		return nil, fmt.Errorf("repositories %q: %w", username, err)
	}
	if len(repos) > model.MaxRepositories {
		repos = repos[:model.MaxRepositories]
	}
	out := make([]model.RepoSummary, 0, len(repos))
	for _, r := range repos {
		out = append(out, model.RepoSummary{
			Name:           r.Name,
			Description:    r.Description,
			Language:       r.Language,
			StarCount:      nonNegative(r.StargazersCount),
			OpenIssueCount: nonNegative(r.OpenIssuesCount),
			IsFork:         r.Fork,
		})
	}
	return out, nil
}

// FetchReadme returns the profile README (the username/username repository).
// It never fails: a missing README yields model.ReadmeNotFound and any other
// failure model.ReadmeUnavailable.
func (c *Client) FetchReadme(ctx context.Context, username string) string {
	start := time.Now()
	u := url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rawURL+"/"+u+"/"+u+"/HEAD/README.md", nil)
	if err != nil {
		return model.ReadmeUnavailable
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordFetch("github_readme", time.Since(start), failUpstream)
		c.log.Warn(ctx, "readme fetch failed", logger.String("username", username), logger.Error(err))
		return model.ReadmeUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordFetch("github_readme", time.Since(start), failNotFound)
		return model.ReadmeNotFound
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordFetch("github_readme", time.Since(start), failUpstream)
		return model.ReadmeUnavailable
	}
	metrics.RecordFetch("github_readme", time.Since(start), "")
	return string(body)
}

// FetchAll gathers profile, repositories and README concurrently. Any
// profile or repository failure fails the whole call.
func (c *Client) FetchAll(ctx context.Context, username string) (model.GitHubProfile, error) {
	var (
		profile model.GitHubProfile
		repos   []model.RepoSummary
		readme  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = c.FetchProfile(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = c.FetchRepositories(gctx, username)
		return err
	})
	g.Go(func() error {
		readme = c.FetchReadme(gctx, username)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.GitHubProfile{}, err
	}
	profile.TopRepositories = repos
	profile.Readme = readme
	return profile, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) (err error) {
	start := time.Now()
	failure := ""
	defer func() {
		metrics.RecordFetch(metricSource, time.Since(start), failure)
		if err != nil {
			c.log.Warn(ctx, "request failed", logger.String("url", endpoint), logger.Error(err))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		failure = failUpstream
		return fmt.Errorf("%w: %w", model.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		failure = failUpstream
		return fmt.Errorf("%w: %w", model.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		failure = failNotFound
		return ErrProfileNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		failure = failUpstream
		return fmt.Errorf("%w: status %d", model.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		failure = failMalformed
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
