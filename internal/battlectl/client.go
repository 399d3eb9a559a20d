package battlectl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client calls the battle API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg *Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{baseURL: base, http: &http.Client{Timeout: timeout}}
}

// GitHubBattle runs GET /battle for two GitHub users.
func (c *Client) GitHubBattle(ctx context.Context, user1, user2 string) (Response, error) {
	q := url.Values{}
	q.Set("username1", user1)
	q.Set("username2", user2)
	return c.get(ctx, "/battle", q)
}

// NFTBattle runs GET /battle?type=nft for two metadata URIs.
func (c *Client) NFTBattle(ctx context.Context, uri1, uri2, user1, user2 string) (Response, error) {
	q := url.Values{}
	q.Set("type", "nft")
	q.Set("nftUri1", uri1)
	q.Set("nftUri2", uri2)
	if user1 != "" {
		q.Set("username1", user1)
	}
	if user2 != "" {
		q.Set("username2", user2)
	}
	return c.get(ctx, "/battle", q)
}

// Auth runs POST /auth.
func (c *Client) Auth(ctx context.Context, username, wallet string) (Response, error) {
	return c.post(ctx, "/auth", map[string]string{"username": username, "walletAddress": wallet})
}

// Profile runs GET /github.
func (c *Client) Profile(ctx context.Context, username string) (Response, error) {
	q := url.Values{}
	q.Set("username", username)
	return c.get(ctx, "/github", q)
}

// Health runs GET /healthz.
func (c *Client) Health(ctx context.Context) (Response, error) {
	return c.get(ctx, "/healthz", nil)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (Response, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body any) (Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	out := Response{Status: resp.StatusCode, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{Status: resp.StatusCode, Body: body}
	}
	return out, nil
}
