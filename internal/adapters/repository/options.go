package repository

import (
	"time"

	"github.com/okian/devxbattle/pkg/logger"
)

type settings struct {
	now            func() time.Time
	log            logger.Logger
	collection     string
	connectTimeout time.Duration
}

func newSettings(opts []Option) settings {
	s := settings{
		now:            time.Now,
		log:            logger.Nop(),
		collection:     "users",
		connectTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a Store.
type Option func(*settings)

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCollection names the MongoDB collection or Postgres table.
func WithCollection(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithConnectTimeout bounds the initial connection and schema setup.
func WithConnectTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}
