package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

type mockAuditRepo struct {
	appendFn func(ctx context.Context, entry *entity.AuditLogEntry) error
	queryFn  func(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error)
}

func (m *mockAuditRepo) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	return m.appendFn(ctx, entry)
}

func (m *mockAuditRepo) Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
	return m.queryFn(ctx, filter)
}

func TestTrail_QueriesChronologicallyUntruncated(t *testing.T) {
	var captured entity.AuditFilter
	repo := &mockAuditRepo{
		queryFn: func(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
			captured = filter
			return []*entity.AuditLogEntry{{WorkflowID: "wf-1", Action: "workflow_started"}}, nil
		},
	}
	svc := NewAuditQueryService(repo, zap.NewNop())

	entries, err := svc.Trail(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if captured.WorkflowID != "wf-1" {
		t.Errorf("expected workflow filter wf-1, got %q", captured.WorkflowID)
	}
	if !captured.OldestFirst {
		t.Error("trail must be oldest first")
	}
	if captured.Limit >= 0 {
		t.Errorf("trail must not be truncated, got limit %d", captured.Limit)
	}
}

func TestTrail_RequiresWorkflowID(t *testing.T) {
	svc := NewAuditQueryService(&mockAuditRepo{}, zap.NewNop())

	if _, err := svc.Trail(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty workflow_id")
	}
}

func TestLowConfidence_DefaultsThreshold(t *testing.T) {
	var captured entity.AuditFilter
	repo := &mockAuditRepo{
		queryFn: func(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := NewAuditQueryService(repo, zap.NewNop())

	if _, err := svc.LowConfidence(context.Background(), 0, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.MaxConfidence == nil || *captured.MaxConfidence != DefaultConfidenceThreshold {
		t.Errorf("expected default threshold %.2f, got %v", DefaultConfidenceThreshold, captured.MaxConfidence)
	}
	if captured.Limit != 20 {
		t.Errorf("expected limit 20, got %d", captured.Limit)
	}
}

func TestQuery_WrapsRepositoryError(t *testing.T) {
	repo := &mockAuditRepo{
		queryFn: func(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
			return nil, errors.New("db gone")
		},
	}
	svc := NewAuditQueryService(repo, zap.NewNop())

	if _, err := svc.Query(context.Background(), entity.AuditFilter{}); err == nil {
		t.Fatal("expected wrapped repository error")
	}
}
