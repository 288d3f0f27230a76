package history

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vijay-talsangi/tourist-app/types"
)

// Store persists per-owner history snapshots between refreshes.
type Store interface {
	Load(ctx context.Context, owner common.Address) ([]types.Payment, bool, error)
	Save(ctx context.Context, owner common.Address, payments []types.Payment) error
	Drop(ctx context.Context, owner common.Address) error
}

type memoryStore struct {
	mu        sync.RWMutex
	snapshots map[common.Address][]types.Payment
}

// NewMemoryStore keeps snapshots in process memory. This is the default.
func NewMemoryStore() Store {
	return &memoryStore{snapshots: make(map[common.Address][]types.Payment)}
}

func (s *memoryStore) Load(_ context.Context, owner common.Address) ([]types.Payment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[owner]
	if !ok {
		return nil, false, nil
	}
	out := make([]types.Payment, len(snap))
	copy(out, snap)
	return out, true, nil
}

func (s *memoryStore) Save(_ context.Context, owner common.Address, payments []types.Payment) error {
	snap := make([]types.Payment, len(payments))
	copy(snap, payments)

	s.mu.Lock()
	s.snapshots[owner] = snap
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Drop(_ context.Context, owner common.Address) error {
	s.mu.Lock()
	delete(s.snapshots, owner)
	s.mu.Unlock()
	return nil
}
