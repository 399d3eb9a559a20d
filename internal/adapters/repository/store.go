// Package repository stores users keyed by unique username and unique
// wallet address.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/devxbattle/internal/domain/model"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Store provides read/write access to users. Uniqueness of username and
// wallet address is enforced here, not by callers.
type Store interface {
	// Create inserts u. Returns ErrDuplicateKey when either unique field is
	// taken.
	Create(ctx context.Context, u model.User) (model.User, error)

	// FindByWallet returns ErrNotFound for unknown wallets.
	FindByWallet(ctx context.Context, wallet string) (model.User, error)

	// FindByUsername returns ErrNotFound for unknown usernames.
	FindByUsername(ctx context.Context, username string) (model.User, error)

	// SetSBTAddress records the soul-bound token minted for wallet and
	// returns the updated user.
	SetSBTAddress(ctx context.Context, wallet, sbtAddress string) (model.User, error)

	// ListWithSBT returns every user holding an SBT, oldest first.
	ListWithSBT(ctx context.Context) ([]model.User, error)

	// Driver names the backend, used as a metrics label.
	Driver() string

	Close(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
}

// Open connects the configured backend.
func Open(ctx context.Context, cfg Config, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, opts...)
	case DriverPostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func validate(u model.User) (model.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.WalletAddress = strings.TrimSpace(u.WalletAddress)
	if u.Username == "" || u.WalletAddress == "" {
		return model.User{}, ErrInvalidUser
	}
	return u, nil
}
