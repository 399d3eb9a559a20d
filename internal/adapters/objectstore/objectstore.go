// Package objectstore keeps SBT metadata documents in S3-compatible storage.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var (
	// ErrDisabled is returned when no object storage is configured.
	ErrDisabled = errors.New("object storage not configured")
	// ErrInvalidKey is returned for empty or unsafe object keys.
	ErrInvalidKey = errors.New("invalid object key")
)

// Store uploads JSON documents and returns the URI they are served from.
type Store interface {
	PutJSON(ctx context.Context, key string, body []byte) (string, error)
	Enabled() bool
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SBTKey is the object key for wallet's SBT metadata.
func SBTKey(wallet string) (string, error) {
	w := unsafeKeyChars.ReplaceAllString(strings.TrimSpace(wallet), "_")
	if w == "" || strings.Trim(w, "._") == "" {
		return "", fmt.Errorf("%w: wallet %q", ErrInvalidKey, wallet)
	}
	return "sbt/" + w + ".json", nil
}

// Disabled rejects every upload with ErrDisabled.
type Disabled struct{}

func (Disabled) PutJSON(context.Context, string, []byte) (string, error) { return "", ErrDisabled }
func (Disabled) Enabled() bool                                             { return false }

// Memory keeps objects in process; URIs use the mem:// scheme.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) PutJSON(_ context.Context, key string, body []byte) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	m.mu.Lock()
	m.objects[key] = append([]byte(nil), body...)
	m.mu.Unlock()
	return "mem://" + key, nil
}

func (m *Memory) Enabled() bool { return true }

// Get returns a stored object.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}
