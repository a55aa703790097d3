package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/ai-procurement/internal/application/orchestrator"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// --- service mocks with func fields ---

type mockWorkflowService struct {
	startFn  func(ctx context.Context, skuID, sku string, currentInventory int) (*entity.ProcurementState, error)
	resumeFn func(ctx context.Context, workflowID string, approved bool, reviewerID, feedback string) (*entity.ProcurementState, error)
	getFn    func(ctx context.Context, workflowID string) (*entity.Projection, error)
}

func (m *mockWorkflowService) Start(ctx context.Context, skuID, sku string, currentInventory int) (*entity.ProcurementState, error) {
	return m.startFn(ctx, skuID, sku, currentInventory)
}

func (m *mockWorkflowService) Resume(ctx context.Context, workflowID string, approved bool, reviewerID, feedback string) (*entity.ProcurementState, error) {
	return m.resumeFn(ctx, workflowID, approved, reviewerID, feedback)
}

func (m *mockWorkflowService) Get(ctx context.Context, workflowID string) (*entity.Projection, error) {
	return m.getFn(ctx, workflowID)
}

func (m *mockWorkflowService) ListPendingApprovals(ctx context.Context, level entity.ApprovalLevel) ([]*entity.Projection, error) {
	return nil, nil
}

func (m *mockWorkflowService) List(ctx context.Context, limit, offset int) ([]*entity.Projection, error) {
	return nil, nil
}

type mockAuditService struct {
	queryFn         func(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error)
	lowConfidenceFn func(ctx context.Context, threshold float64, limit int) ([]*entity.AuditLogEntry, error)
}

func (m *mockAuditService) Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
	return m.queryFn(ctx, filter)
}

func (m *mockAuditService) Trail(ctx context.Context, workflowID string) ([]*entity.AuditLogEntry, error) {
	return nil, nil
}

func (m *mockAuditService) LowConfidence(ctx context.Context, threshold float64, limit int) ([]*entity.AuditLogEntry, error) {
	return m.lowConfidenceFn(ctx, threshold, limit)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestRouter(ws WorkflowService, as AuditService) http.Handler {
	return NewServer(DefaultServerConfig(), ws, as, nopLogger{}).Router()
}

// --- audit query ---

func TestQueryAudit_BindsTimeRange(t *testing.T) {
	var captured entity.AuditFilter
	audit := &mockAuditService{
		queryFn: func(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
			captured = filter
			return []*entity.AuditLogEntry{}, nil
		},
	}
	router := newTestRouter(&mockWorkflowService{}, audit)

	from := "2026-08-01T00:00:00Z"
	to := "2026-08-27T12:00:00Z"
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/audit?workflow_id=wf-1&from="+from+"&to="+to, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "wf-1", captured.WorkflowID)

	wantFrom, err := time.Parse(time.RFC3339, from)
	require.NoError(t, err)
	wantTo, err := time.Parse(time.RFC3339, to)
	require.NoError(t, err)
	assert.True(t, captured.From.Equal(wantFrom))
	assert.True(t, captured.To.Equal(wantTo))
}

func TestQueryAudit_RejectsMalformedTimestamps(t *testing.T) {
	called := false
	audit := &mockAuditService{
		queryFn: func(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
			called = true
			return nil, nil
		},
	}
	router := newTestRouter(&mockWorkflowService{}, audit)

	for _, query := range []string{"from=yesterday", "to=2026-13-99"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/audit?"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
	assert.False(t, called)
}

func TestQueryAudit_OmittedRangeIsUnbounded(t *testing.T) {
	var captured entity.AuditFilter
	audit := &mockAuditService{
		queryFn: func(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error) {
			captured = filter
			return []*entity.AuditLogEntry{}, nil
		},
	}
	router := newTestRouter(&mockWorkflowService{}, audit)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, captured.From.IsZero())
	assert.True(t, captured.To.IsZero())
}

// --- low-confidence audit ---

func TestLowConfidenceAudit_PassesThresholdAndLimit(t *testing.T) {
	var gotThreshold float64
	var gotLimit int
	audit := &mockAuditService{
		lowConfidenceFn: func(ctx context.Context, threshold float64, limit int) ([]*entity.AuditLogEntry, error) {
			gotThreshold = threshold
			gotLimit = limit
			c := 0.6
			return []*entity.AuditLogEntry{{WorkflowID: "wf-1", Agent: "demand_forecaster", Confidence: &c}}, nil
		},
	}
	router := newTestRouter(&mockWorkflowService{}, audit)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/low-confidence?threshold=0.7&limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.7, gotThreshold)
	assert.Equal(t, 5, gotLimit)
	assert.Contains(t, w.Body.String(), "wf-1")
}

func TestLowConfidenceAudit_DefaultsAndValidation(t *testing.T) {
	var gotThreshold float64
	var gotLimit int
	audit := &mockAuditService{
		lowConfidenceFn: func(ctx context.Context, threshold float64, limit int) ([]*entity.AuditLogEntry, error) {
			gotThreshold = threshold
			gotLimit = limit
			return []*entity.AuditLogEntry{}, nil
		},
	}
	router := newTestRouter(&mockWorkflowService{}, audit)

	// No parameters: threshold 0 lets the service apply its default cutoff
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/low-confidence", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, gotThreshold)
	assert.Equal(t, 100, gotLimit)

	// Out-of-range threshold is caller misuse
	req = httptest.NewRequest(http.MethodGet, "/api/v1/audit/low-confidence?threshold=1.5", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- resume error mapping ---

func TestResumeWorkflow_ResolvedApprovalIsConflict(t *testing.T) {
	workflows := &mockWorkflowService{
		resumeFn: func(ctx context.Context, workflowID string, approved bool, reviewerID, feedback string) (*entity.ProcurementState, error) {
			return nil, fmt.Errorf("%w: concurrent decision already recorded", orchestrator.ErrAlreadyResolved)
		},
	}
	router := newTestRouter(workflows, &mockAuditService{})

	body := strings.NewReader(`{"approved": true, "reviewer_id": "mgr-7"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflows/wf-1/resume", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already")
}
