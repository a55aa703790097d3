package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// AuditLogRepository implements port.AuditLogRepository on SQLite.
// The table is append-only; there is deliberately no update or delete.
type AuditLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sql.DB, logger *zap.Logger) port.AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		logger: logger,
	}
}

// Append writes one immutable audit entry
func (r *AuditLogRepository) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	inputs, err := marshalSnapshot(entry.Inputs)
	if err != nil {
		return fmt.Errorf("failed to marshal audit inputs: %w", err)
	}
	outputs, err := marshalSnapshot(entry.Outputs)
	if err != nil {
		return fmt.Errorf("failed to marshal audit outputs: %w", err)
	}

	query := `
		INSERT INTO audit_log (
			schema_version, workflow_id, timestamp, agent, action,
			reasoning, inputs, outputs, confidence, sku
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.SchemaVersion,
		entry.WorkflowID,
		entry.Timestamp,
		entry.Agent,
		entry.Action,
		entry.Reasoning,
		inputs,
		outputs,
		nullFloat(entry.Confidence),
		entry.SKU,
	)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("workflow_id", entry.WorkflowID),
			zap.String("action", entry.Action),
			zap.Error(err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id

	return nil
}

// Query retrieves audit entries matching the filter, newest first unless the
// filter asks for the chronological trail
func (r *AuditLogRepository) Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
	query := `
		SELECT id, schema_version, workflow_id, timestamp, agent, action,
			reasoning, inputs, outputs, confidence, sku
		FROM audit_log
		WHERE 1=1
	`
	var args []interface{}

	if filter.WorkflowID != "" {
		query += ` AND workflow_id = ?`
		args = append(args, filter.WorkflowID)
	}
	if filter.Agent != "" {
		query += ` AND agent = ?`
		args = append(args, filter.Agent)
	}
	if filter.Action != "" {
		query += ` AND action = ?`
		args = append(args, filter.Action)
	}
	if filter.SKU != "" {
		query += ` AND sku = ?`
		args = append(args, filter.SKU)
	}
	if filter.MinConfidence != nil {
		query += ` AND confidence >= ?`
		args = append(args, *filter.MinConfidence)
	}
	if filter.MaxConfidence != nil {
		query += ` AND confidence < ?`
		args = append(args, *filter.MaxConfidence)
	}
	if !filter.From.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, filter.To)
	}

	if filter.OldestFirst {
		query += ` ORDER BY timestamp ASC, id ASC`
	} else {
		query += ` ORDER BY timestamp DESC, id DESC`
	}

	// Zero means the default page size; negative passes through as SQLite's
	// "no limit" so the chronological trail is never truncated.
	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query audit log", zap.Error(err))
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*entity.AuditLogEntry
	for rows.Next() {
		var entry entity.AuditLogEntry
		var inputs, outputs string
		var confidence sql.NullFloat64

		err := rows.Scan(
			&entry.ID,
			&entry.SchemaVersion,
			&entry.WorkflowID,
			&entry.Timestamp,
			&entry.Agent,
			&entry.Action,
			&entry.Reasoning,
			&inputs,
			&outputs,
			&confidence,
			&entry.SKU,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if err := json.Unmarshal([]byte(inputs), &entry.Inputs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit inputs: %w", err)
		}
		if err := json.Unmarshal([]byte(outputs), &entry.Outputs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit outputs: %w", err)
		}
		if confidence.Valid {
			c := confidence.Float64
			entry.Confidence = &c
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

func marshalSnapshot(m map[string]interface{}) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify interface compliance
var _ port.AuditLogRepository = (*AuditLogRepository)(nil)
