package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/ai-procurement/internal/application/orchestrator"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// WorkflowService is the slice of the orchestrator the HTTP layer consumes
type WorkflowService interface {
	Start(ctx context.Context, skuID, sku string, currentInventory int) (*entity.ProcurementState, error)
	Resume(ctx context.Context, workflowID string, approved bool, reviewerID, feedback string) (*entity.ProcurementState, error)
	Get(ctx context.Context, workflowID string) (*entity.Projection, error)
	ListPendingApprovals(ctx context.Context, level entity.ApprovalLevel) ([]*entity.Projection, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Projection, error)
}

// AuditService is the audit query surface the HTTP layer consumes
type AuditService interface {
	Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLogEntry, error)
	Trail(ctx context.Context, workflowID string) ([]*entity.AuditLogEntry, error)
	LowConfidence(ctx context.Context, threshold float64, limit int) ([]*entity.AuditLogEntry, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	orchestrator WorkflowService
	auditService AuditService
	logger       Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(orchestrator WorkflowService, auditService AuditService, logger Logger) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		auditService: auditService,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// StartWorkflowRequest is the body of POST /api/v1/workflows
type StartWorkflowRequest struct {
	SKUID            string `json:"sku_id" binding:"required"`
	SKU              string `json:"sku" binding:"required"`
	CurrentInventory int    `json:"current_inventory"`
}

// ResumeWorkflowRequest is the body of POST /api/v1/workflows/:id/resume
type ResumeWorkflowRequest struct {
	Approved   *bool  `json:"approved" binding:"required"`
	ReviewerID string `json:"reviewer_id" binding:"required"`
	Feedback   string `json:"feedback"`
}

// WorkflowResponse is the API shape of a workflow projection
type WorkflowResponse struct {
	WorkflowID            string   `json:"workflow_id"`
	SKUID                 string   `json:"sku_id"`
	SKU                   string   `json:"sku"`
	WorkflowStatus        string   `json:"workflow_status"`
	ApprovalStatus        string   `json:"approval_status"`
	ApprovalRequiredLevel string   `json:"approval_required_level,omitempty"`
	OrderValue            float64  `json:"order_value"`
	ForecastConfidence    *float64 `json:"forecast_confidence,omitempty"`
	RecommendedQuantity   int      `json:"recommended_quantity"`
	ErrorMessage          string   `json:"error_message,omitempty"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`
}

// ListRequest represents shared pagination query parameters
type ListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// AuditQueryRequest represents query parameters for GET /api/v1/audit
type AuditQueryRequest struct {
	WorkflowID    string   `form:"workflow_id"`
	Agent         string   `form:"agent"`
	Action        string   `form:"action"`
	SKU           string   `form:"sku"`
	MinConfidence *float64 `form:"min_confidence"`
	MaxConfidence *float64 `form:"max_confidence"`
	From          string   `form:"from"`
	To            string   `form:"to"`
	Limit         int      `form:"limit"`
	Offset        int      `form:"offset"`
}

// LowConfidenceRequest represents query parameters for GET /api/v1/audit/low-confidence
type LowConfidenceRequest struct {
	Threshold float64 `form:"threshold"`
	Limit     int     `form:"limit"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// StartWorkflow handles POST /api/v1/workflows
func (h *Handlers) StartWorkflow(c *gin.Context) {
	var req StartWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid start request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "sku_id and sku are required",
		})
		return
	}
	if req.CurrentInventory < 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "current_inventory must be >= 0",
		})
		return
	}

	state, err := h.orchestrator.Start(c.Request.Context(), req.SKUID, req.SKU, req.CurrentInventory)
	if err != nil {
		// A stage failure still produced a durable FAILED workflow; surface
		// both the error and the workflow ID so the caller can inspect it.
		h.logger.Error("Workflow failed during start", "error", err)
		status := http.StatusBadGateway
		var data interface{}
		if state != nil {
			data = gin.H{"workflow_id": state.WorkflowID, "workflow_status": state.WorkflowStatus.String()}
		}
		c.JSON(status, Response{
			Success: false,
			Data:    data,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toStateResponse(state),
	})
}

// ResumeWorkflow handles POST /api/v1/workflows/:id/resume
func (h *Handlers) ResumeWorkflow(c *gin.Context) {
	workflowID := c.Param("id")

	var req ResumeWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid resume request", "workflow_id", workflowID, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "approved and reviewer_id are required",
		})
		return
	}

	state, err := h.orchestrator.Resume(c.Request.Context(), workflowID, *req.Approved, req.ReviewerID, req.Feedback)
	if err != nil {
		h.respondResumeError(c, workflowID, state, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toStateResponse(state),
	})
}

// respondResumeError maps resume failures onto HTTP statuses: caller misuse
// is 4xx, storage faults are 500, downstream stage failures are 502.
func (h *Handlers) respondResumeError(c *gin.Context, workflowID string, state *entity.ProcurementState, err error) {
	h.logger.Error("Resume failed", "workflow_id", workflowID, "error", err)

	switch {
	case errors.Is(err, orchestrator.ErrWorkflowNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, orchestrator.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case orchestrator.IsValidationError(err):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, orchestrator.ErrConsistency):
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
	default:
		var data interface{}
		if state != nil {
			data = gin.H{"workflow_id": state.WorkflowID, "workflow_status": state.WorkflowStatus.String()}
		}
		c.JSON(http.StatusBadGateway, Response{Success: false, Data: data, Error: err.Error()})
	}
}

// GetWorkflow handles GET /api/v1/workflows/:id
func (h *Handlers) GetWorkflow(c *gin.Context) {
	workflowID := c.Param("id")

	proj, err := h.orchestrator.Get(c.Request.Context(), workflowID)
	if err != nil {
		if errors.Is(err, orchestrator.ErrWorkflowNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "workflow not found"})
			return
		}
		h.logger.Error("Failed to get workflow", "workflow_id", workflowID, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve workflow"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toWorkflowResponse(proj),
	})
}

// ListWorkflows handles GET /api/v1/workflows
func (h *Handlers) ListWorkflows(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	projections, err := h.orchestrator.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list workflows", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve workflows"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toWorkflowResponses(projections),
	})
}

// ListPendingApprovals handles GET /api/v1/approvals/pending
func (h *Handlers) ListPendingApprovals(c *gin.Context) {
	level := entity.ApprovalLevel(c.Query("level"))
	if level != "" && !level.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid approval level"})
		return
	}

	projections, err := h.orchestrator.ListPendingApprovals(c.Request.Context(), level)
	if err != nil {
		h.logger.Error("Failed to list pending approvals", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve pending approvals"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toWorkflowResponses(projections),
	})
}

// WorkflowAuditTrail handles GET /api/v1/workflows/:id/audit
func (h *Handlers) WorkflowAuditTrail(c *gin.Context) {
	workflowID := c.Param("id")

	// 404 for unknown workflows rather than an empty trail
	if _, err := h.orchestrator.Get(c.Request.Context(), workflowID); err != nil {
		if errors.Is(err, orchestrator.ErrWorkflowNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "workflow not found"})
			return
		}
		h.logger.Error("Failed to get workflow for audit trail", "workflow_id", workflowID, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve workflow"})
		return
	}

	entries, err := h.auditService.Trail(c.Request.Context(), workflowID)
	if err != nil {
		h.logger.Error("Failed to fetch audit trail", "workflow_id", workflowID, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve audit trail"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// QueryAudit handles GET /api/v1/audit
func (h *Handlers) QueryAudit(c *gin.Context) {
	var req AuditQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	from, err := parseTimeParam(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "from must be an RFC3339 timestamp"})
		return
	}
	to, err := parseTimeParam(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "to must be an RFC3339 timestamp"})
		return
	}

	entries, err := h.auditService.Query(c.Request.Context(), entity.AuditFilter{
		WorkflowID:    req.WorkflowID,
		Agent:         req.Agent,
		Action:        req.Action,
		SKU:           req.SKU,
		MinConfidence: req.MinConfidence,
		MaxConfidence: req.MaxConfidence,
		From:          from,
		To:            to,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
	if err != nil {
		h.logger.Error("Audit query failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "audit query failed"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// LowConfidenceAudit handles GET /api/v1/audit/low-confidence
func (h *Handlers) LowConfidenceAudit(c *gin.Context) {
	var req LowConfidenceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "threshold must be in [0, 1]"})
		return
	}
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}

	entries, err := h.auditService.LowConfidence(c.Request.Context(), req.Threshold, req.Limit)
	if err != nil {
		h.logger.Error("Low-confidence audit query failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "audit query failed"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// parseTimeParam parses an optional RFC3339 query parameter
func parseTimeParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// toWorkflowResponse converts a projection to the API response shape
func toWorkflowResponse(p *entity.Projection) WorkflowResponse {
	return WorkflowResponse{
		WorkflowID:            p.WorkflowID,
		SKUID:                 p.SKUID,
		SKU:                   p.SKU,
		WorkflowStatus:        p.WorkflowStatus.String(),
		ApprovalStatus:        p.ApprovalStatus.String(),
		ApprovalRequiredLevel: p.ApprovalRequiredLevel.String(),
		OrderValue:            p.OrderValue,
		ForecastConfidence:    p.ForecastConfidence,
		RecommendedQuantity:   p.RecommendedQuantity,
		ErrorMessage:          p.ErrorMessage,
		CreatedAt:             p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             p.UpdatedAt.Format(time.RFC3339),
	}
}

func toWorkflowResponses(projections []*entity.Projection) []WorkflowResponse {
	responses := make([]WorkflowResponse, 0, len(projections))
	for _, p := range projections {
		responses = append(responses, toWorkflowResponse(p))
	}
	return responses
}

// toStateResponse converts the live state returned by start/resume
func toStateResponse(s *entity.ProcurementState) WorkflowResponse {
	return toWorkflowResponse(entity.ProjectionOf(s))
}
