package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// CheckpointRepository implements port.CheckpointStore on SQLite. The full
// procurement state is serialized as a JSON blob keyed by thread ID; an
// upsert keeps exactly one (the latest) checkpoint per thread.
type CheckpointRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCheckpointRepository creates a new durable checkpoint store
func NewCheckpointRepository(db *sql.DB, logger *zap.Logger) port.CheckpointStore {
	return &CheckpointRepository{
		db:     db,
		logger: logger,
	}
}

// Save durably writes the state snapshot for the thread
func (r *CheckpointRepository) Save(ctx context.Context, threadID string, state *entity.ProcurementState) error {
	if threadID == "" {
		return fmt.Errorf("thread ID is required")
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint state: %w", err)
	}

	query := `
		INSERT INTO checkpoints (thread_id, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, threadID, string(blob), time.Now().UTC()); err != nil {
		r.logger.Error("Failed to save checkpoint",
			zap.String("thread_id", threadID), zap.Error(err))
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	return nil
}

// Load returns the most recent snapshot for the thread, or
// port.ErrCheckpointNotFound when none exists
func (r *CheckpointRepository) Load(ctx context.Context, threadID string) (*entity.ProcurementState, error) {
	query := `SELECT state FROM checkpoints WHERE thread_id = ?`

	var blob string
	err := r.db.QueryRowContext(ctx, query, threadID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, port.ErrCheckpointNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load checkpoint",
			zap.String("thread_id", threadID), zap.Error(err))
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var state entity.ProcurementState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint state: %w", err)
	}

	return &state, nil
}

// Verify interface compliance
var _ port.CheckpointStore = (*CheckpointRepository)(nil)
