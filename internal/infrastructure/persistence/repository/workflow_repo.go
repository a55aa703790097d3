package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
	"github.com/garyjia/ai-procurement/internal/domain/workflow"
)

// WorkflowRepository implements port.WorkflowRepository on SQLite
type WorkflowRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow projection repository
func NewWorkflowRepository(db *sql.DB, logger *zap.Logger) port.WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

const projectionColumns = `workflow_id, thread_id, sku_id, sku, workflow_status,
	approval_status, approval_required_level, order_value, forecast_confidence,
	recommended_quantity, error_message, created_at, updated_at`

// Create inserts the projection row for a freshly started workflow
func (r *WorkflowRepository) Create(ctx context.Context, p *entity.Projection) error {
	query := `
		INSERT INTO procurement_workflows (` + projectionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.WorkflowID,
		p.ThreadID,
		p.SKUID,
		p.SKU,
		p.WorkflowStatus.String(),
		p.ApprovalStatus.String(),
		p.ApprovalRequiredLevel.String(),
		p.OrderValue,
		nullFloat(p.ForecastConfidence),
		p.RecommendedQuantity,
		p.ErrorMessage,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create workflow projection",
			zap.String("workflow_id", p.WorkflowID), zap.Error(err))
		return fmt.Errorf("failed to create workflow projection: %w", err)
	}

	return nil
}

// GetByWorkflowID retrieves a projection row; nil when not found
func (r *WorkflowRepository) GetByWorkflowID(ctx context.Context, workflowID string) (*entity.Projection, error) {
	query := `SELECT ` + projectionColumns + ` FROM procurement_workflows WHERE workflow_id = ?`

	p, err := r.scanOne(r.db.QueryRowContext(ctx, query, workflowID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow projection",
			zap.String("workflow_id", workflowID), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow projection: %w", err)
	}

	return p, nil
}

// Update overwrites the mutable projection fields after a stage transition
func (r *WorkflowRepository) Update(ctx context.Context, p *entity.Projection) error {
	query := `
		UPDATE procurement_workflows SET
			workflow_status = ?,
			approval_status = ?,
			approval_required_level = ?,
			order_value = ?,
			forecast_confidence = ?,
			recommended_quantity = ?,
			error_message = ?,
			updated_at = ?
		WHERE workflow_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		p.WorkflowStatus.String(),
		p.ApprovalStatus.String(),
		p.ApprovalRequiredLevel.String(),
		p.OrderValue,
		nullFloat(p.ForecastConfidence),
		p.RecommendedQuantity,
		p.ErrorMessage,
		p.UpdatedAt,
		p.WorkflowID,
	)
	if err != nil {
		r.logger.Error("Failed to update workflow projection",
			zap.String("workflow_id", p.WorkflowID), zap.Error(err))
		return fmt.Errorf("failed to update workflow projection: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("workflow projection %s does not exist", p.WorkflowID)
	}

	return nil
}

// ClaimApproval flips a PENDING approval to the resolved status in one
// statement; the WHERE clause makes concurrent claims mutually exclusive
func (r *WorkflowRepository) ClaimApproval(ctx context.Context, workflowID string, status entity.ApprovalStatus) (bool, error) {
	query := `
		UPDATE procurement_workflows SET
			approval_status = ?,
			updated_at = ?
		WHERE workflow_id = ? AND approval_status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		status.String(),
		time.Now().UTC(),
		workflowID,
		entity.ApprovalPending.String(),
	)
	if err != nil {
		r.logger.Error("Failed to claim approval",
			zap.String("workflow_id", workflowID), zap.Error(err))
		return false, fmt.Errorf("failed to claim approval: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check claim result: %w", err)
	}

	return rows > 0, nil
}

// ListPendingApprovals returns suspended workflows ordered by descending order value
func (r *WorkflowRepository) ListPendingApprovals(ctx context.Context, level entity.ApprovalLevel) ([]*entity.Projection, error) {
	query := `
		SELECT ` + projectionColumns + `
		FROM procurement_workflows
		WHERE workflow_status = ? AND approval_status = ?
	`
	args := []interface{}{workflow.StateAwaitingApproval.String(), entity.ApprovalPending.String()}

	if level != "" {
		query += ` AND approval_required_level = ?`
		args = append(args, level.String())
	}
	query += ` ORDER BY order_value DESC`

	return r.queryMany(ctx, query, args...)
}

// List retrieves projection rows with pagination, newest first
func (r *WorkflowRepository) List(ctx context.Context, limit, offset int) ([]*entity.Projection, error) {
	query := `
		SELECT ` + projectionColumns + `
		FROM procurement_workflows
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.queryMany(ctx, query, limit, offset)
}

func (r *WorkflowRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Projection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list workflow projections", zap.Error(err))
		return nil, fmt.Errorf("failed to list workflow projections: %w", err)
	}
	defer rows.Close()

	var projections []*entity.Projection
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow projection: %w", err)
		}
		projections = append(projections, p)
	}

	return projections, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *WorkflowRepository) scanOne(row rowScanner) (*entity.Projection, error) {
	var p entity.Projection
	var status, approvalStatus, level string
	var confidence sql.NullFloat64

	err := row.Scan(
		&p.WorkflowID,
		&p.ThreadID,
		&p.SKUID,
		&p.SKU,
		&status,
		&approvalStatus,
		&level,
		&p.OrderValue,
		&confidence,
		&p.RecommendedQuantity,
		&p.ErrorMessage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.WorkflowStatus = workflow.State(status)
	p.ApprovalStatus = entity.ApprovalStatus(approvalStatus)
	p.ApprovalRequiredLevel = entity.ApprovalLevel(level)
	if confidence.Valid {
		c := confidence.Float64
		p.ForecastConfidence = &c
	}

	return &p, nil
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// Verify interface compliance
var _ port.WorkflowRepository = (*WorkflowRepository)(nil)
