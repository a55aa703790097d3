package port

import (
	"context"

	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// WorkflowRepository persists the queryable projection row, one per workflow.
// The projection mirrors the live state for dashboards and approval queues;
// it is derived from the checkpoint and never used alone for resumption.
type WorkflowRepository interface {
	Create(ctx context.Context, p *entity.Projection) error
	GetByWorkflowID(ctx context.Context, workflowID string) (*entity.Projection, error)
	Update(ctx context.Context, p *entity.Projection) error
	// ClaimApproval resolves a pending approval in a single conditional
	// write: the status is set only while approval_status is still PENDING,
	// and false is returned when another caller already resolved it. This is
	// the serialization point that keeps concurrent reviewer decisions from
	// double-processing one workflow.
	ClaimApproval(ctx context.Context, workflowID string, status entity.ApprovalStatus) (bool, error)
	// ListPendingApprovals returns suspended workflows ordered by descending
	// order value; level filters to a single tier when non-empty.
	ListPendingApprovals(ctx context.Context, level entity.ApprovalLevel) ([]*entity.Projection, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Projection, error)
}

// AuditLogRepository is the append-only store of stage decisions.
// Entries are never updated or deleted; corrections are new entries.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AuditLogEntry) error
	Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error)
}
