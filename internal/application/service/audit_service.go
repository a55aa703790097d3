// Package service holds application-level query services over the
// repositories, kept separate from the orchestrator's write path.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// DefaultConfidenceThreshold is the cutoff for the low-confidence review queue
const DefaultConfidenceThreshold = 0.85

// AuditQueryService answers read-only questions about the audit log
type AuditQueryService struct {
	auditLog port.AuditLogRepository
	logger   *zap.Logger
}

// NewAuditQueryService creates a new audit query service
func NewAuditQueryService(auditLog port.AuditLogRepository, logger *zap.Logger) *AuditQueryService {
	return &AuditQueryService{
		auditLog: auditLog,
		logger:   logger,
	}
}

// Query runs an arbitrary filtered query against the audit log
func (s *AuditQueryService) Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
	entries, err := s.auditLog.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("audit query failed: %w", err)
	}
	return entries, nil
}

// Trail returns the full decision history of one workflow in the order the
// decisions were made.
func (s *AuditQueryService) Trail(ctx context.Context, workflowID string) ([]*entity.AuditLogEntry, error) {
	if workflowID == "" {
		return nil, fmt.Errorf("workflow_id is required")
	}

	entries, err := s.auditLog.Query(ctx, entity.AuditFilter{
		WorkflowID:  workflowID,
		OldestFirst: true,
		Limit:       -1, // the trail is never truncated
	})
	if err != nil {
		return nil, fmt.Errorf("audit trail query failed: %w", err)
	}

	s.logger.Debug("Audit trail fetched",
		zap.String("workflow_id", workflowID),
		zap.Int("entries", len(entries)))

	return entries, nil
}

// LowConfidence returns entries whose recorded confidence sits below the
// threshold; threshold <= 0 selects the default cutoff. Entries without a
// confidence score are excluded.
func (s *AuditQueryService) LowConfidence(ctx context.Context, threshold float64, limit int) ([]*entity.AuditLogEntry, error) {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	entries, err := s.auditLog.Query(ctx, entity.AuditFilter{
		MaxConfidence: &threshold,
		Limit:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("low-confidence query failed: %w", err)
	}
	return entries, nil
}
