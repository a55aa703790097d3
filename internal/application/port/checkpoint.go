package port

import (
	"context"
	"errors"

	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// ErrCheckpointNotFound is returned by Load when no checkpoint exists for the
// thread. When the projection claims the workflow exists this is a consistency
// fault, not a validation error.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointStore is the durable keyed-by-thread snapshot of the full
// procurement state. A Save at a suspend boundary must be durable before
// Start/Resume return; Load must return the most recent Save for the thread.
type CheckpointStore interface {
	Save(ctx context.Context, threadID string, state *entity.ProcurementState) error
	Load(ctx context.Context, threadID string) (*entity.ProcurementState, error)
}
