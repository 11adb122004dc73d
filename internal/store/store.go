// Package store persists room snapshots. Writes are best-effort: the room
// actor fires them off without awaiting completion, and in-memory state
// stays authoritative for the life of the process.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/crichub/auction-backend/internal/types"
)

// ErrNotFound is returned by Load when no snapshot exists for the code.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore is the persistence port for room state.
type SnapshotStore interface {
	Save(ctx context.Context, code string, snap *types.RoomSnapshot) error
	Load(ctx context.Context, code string) (*types.RoomSnapshot, error)
	Delete(ctx context.Context, code string) error
}

// MemoryStore keeps snapshots in a process-local map. It backs tests and
// deployments that run without Postgres.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, code string, snap *types.RoomSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[code] = data
	return nil
}

func (m *MemoryStore) Load(_ context.Context, code string) (*types.RoomSnapshot, error) {
	m.mu.RLock()
	data, ok := m.snaps[code]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var snap types.RoomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *MemoryStore) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, code)
	return nil
}
