package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/pkg/metrics"
)

// MemoryStore keeps users in process. Data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	byWallet map[string]*model.User
	byName   map[string]*model.User
	settings settings
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		byWallet: make(map[string]*model.User),
		byName:   make(map[string]*model.User),
		settings: newSettings(opts),
	}
}

func (s *MemoryStore) Driver() string { return DriverMemory }

func (s *MemoryStore) Create(_ context.Context, u model.User) (model.User, error) {
	metrics.RecordStoreOperation(DriverMemory, "create")
	u, err := validate(u)
	if err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byWallet[u.WalletAddress]; ok {
		metrics.RecordStoreError(DriverMemory, "duplicate")
		return model.User{}, ErrDuplicateKey
	}
	if _, ok := s.byName[u.Username]; ok {
		metrics.RecordStoreError(DriverMemory, "duplicate")
		return model.User{}, ErrDuplicateKey
	}
	u.CreatedAt = s.settings.now()
	stored := u
	s.byWallet[u.WalletAddress] = &stored
	s.byName[u.Username] = &stored
	return stored, nil
}

func (s *MemoryStore) FindByWallet(_ context.Context, wallet string) (model.User, error) {
	metrics.RecordStoreOperation(DriverMemory, "find_by_wallet")
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byWallet[wallet]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return *u, nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	metrics.RecordStoreOperation(DriverMemory, "find_by_username")
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byName[username]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return *u, nil
}

func (s *MemoryStore) SetSBTAddress(_ context.Context, wallet, sbtAddress string) (model.User, error) {
	metrics.RecordStoreOperation(DriverMemory, "set_sbt")
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byWallet[wallet]
	if !ok {
		return model.User{}, ErrNotFound
	}
	u.SBTAddress = sbtAddress
	return *u, nil
}

func (s *MemoryStore) ListWithSBT(_ context.Context) ([]model.User, error) {
	metrics.RecordStoreOperation(DriverMemory, "list_sbt")
	s.mu.RLock()
	out := make([]model.User, 0, len(s.byWallet))
	for _, u := range s.byWallet {
		if u.HasSBT() {
			out = append(out, *u)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Len returns the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byWallet)
}

func (s *MemoryStore) Close(context.Context) error { return nil }
