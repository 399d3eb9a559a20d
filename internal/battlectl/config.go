// Package battlectl drives a running DevX Battle server over HTTP.
package battlectl

import "time"

// Default configuration constants.
const (
	DefaultBaseURL = "http://localhost:9080"
	// DefaultTimeout covers both fetches and the generation call of a battle.
	DefaultTimeout = 90 * time.Second
)

// Config holds configuration for a battlectl run.
type Config struct {
	BaseURL string        // Base URL of the service
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log requests and statuses
}

// Response is a raw reply from the server.
type Response struct {
	Status int
	Body   []byte
}
