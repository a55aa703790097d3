package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// MemoryCheckpointStore is the in-memory port.CheckpointStore used in tests
// and single-process setups. States are stored as serialized snapshots so a
// Load always returns an independent copy; callers can never mutate a stored
// checkpoint through a returned pointer.
type MemoryCheckpointStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryCheckpointStore creates an empty in-memory checkpoint store
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		blobs: make(map[string][]byte),
	}
}

// Save stores a snapshot of the state for the thread
func (s *MemoryCheckpointStore) Save(ctx context.Context, threadID string, state *entity.ProcurementState) error {
	if threadID == "" {
		return fmt.Errorf("thread ID is required")
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint state: %w", err)
	}

	s.mu.Lock()
	s.blobs[threadID] = blob
	s.mu.Unlock()

	return nil
}

// Load returns a copy of the most recent snapshot for the thread
func (s *MemoryCheckpointStore) Load(ctx context.Context, threadID string) (*entity.ProcurementState, error) {
	s.mu.RLock()
	blob, exists := s.blobs[threadID]
	s.mu.RUnlock()

	if !exists {
		return nil, port.ErrCheckpointNotFound
	}

	var state entity.ProcurementState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint state: %w", err)
	}

	return &state, nil
}

// Verify interface compliance
var _ port.CheckpointStore = (*MemoryCheckpointStore)(nil)
