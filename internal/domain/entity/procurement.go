package entity

import (
	"fmt"
	"time"

	"github.com/garyjia/ai-procurement/internal/domain/workflow"
)

// ProcurementState is the full record of one purchase decision in flight.
// It is created by Start, mutated by each stage and by Resume, and becomes
// permanently immutable once WorkflowStatus is terminal.
type ProcurementState struct {
	WorkflowID string `json:"workflow_id"`
	ThreadID   string `json:"thread_id"`

	SKUID            string `json:"sku_id"`
	SKU              string `json:"sku"`
	CurrentInventory int    `json:"current_inventory"`

	ForecastConfidence  *float64            `json:"forecast_confidence"`
	Forecast            *ForecastResult     `json:"forecast,omitempty"`
	SafetyStock         int                 `json:"safety_stock"`
	ReorderPoint        int                 `json:"reorder_point"`
	RecommendedQuantity int                 `json:"recommended_quantity"`
	SelectedVendor      *VendorChoice       `json:"selected_vendor,omitempty"`
	OrderValue          float64             `json:"order_value"`
	PurchaseOrder       *PurchaseOrder      `json:"purchase_order,omitempty"`

	ApprovalStatus        ApprovalStatus `json:"approval_status"`
	ApprovalRequiredLevel ApprovalLevel  `json:"approval_required_level,omitempty"`
	ReviewerID            string         `json:"reviewer_id,omitempty"`
	HumanFeedback         string         `json:"human_feedback,omitempty"`

	WorkflowStatus workflow.State `json:"workflow_status"`
	ErrorMessage   string         `json:"error_message,omitempty"`

	AuditLog []AuditLogEntry `json:"audit_log"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProcurementState builds the initial state for a freshly started workflow
func NewProcurementState(workflowID, threadID, skuID, sku string, currentInventory int) *ProcurementState {
	now := time.Now().UTC()
	return &ProcurementState{
		WorkflowID:       workflowID,
		ThreadID:         threadID,
		SKUID:            skuID,
		SKU:              sku,
		CurrentInventory: currentInventory,
		ApprovalStatus:   ApprovalPending,
		WorkflowStatus:   workflow.StateInitialized,
		AuditLog:         []AuditLogEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Touch bumps the modification timestamp; call after every mutation
func (s *ProcurementState) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// SetStatus moves the workflow to a new status and bumps UpdatedAt
func (s *ProcurementState) SetStatus(status workflow.State) {
	s.WorkflowStatus = status
	s.Touch()
}

// AppendAudit appends an immutable audit entry in chronological order
func (s *ProcurementState) AppendAudit(entry AuditLogEntry) {
	if entry.SchemaVersion == "" {
		entry.SchemaVersion = PayloadSchemaVersion
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.WorkflowID = s.WorkflowID
	if entry.SKU == "" {
		entry.SKU = s.SKU
	}
	s.AuditLog = append(s.AuditLog, entry)
	s.Touch()
}

// MarkFailed transitions the state to FAILED with the captured error message
func (s *ProcurementState) MarkFailed(errMsg string) {
	s.WorkflowStatus = workflow.StateFailed
	s.ErrorMessage = errMsg
	s.Touch()
}

// IsTerminal returns true once no further stage may mutate the state
func (s *ProcurementState) IsTerminal() bool {
	return s.WorkflowStatus.IsTerminal()
}

// Validate checks the cross-field invariants of the state record
func (s *ProcurementState) Validate() error {
	if s.WorkflowID == "" {
		return fmt.Errorf("workflow_id is required")
	}
	if s.ThreadID == "" {
		return fmt.Errorf("thread_id is required")
	}
	if !s.WorkflowStatus.IsValid() {
		return fmt.Errorf("invalid workflow_status: %s", s.WorkflowStatus)
	}
	if s.RecommendedQuantity < 0 {
		return fmt.Errorf("recommended_quantity must be >= 0, got %d", s.RecommendedQuantity)
	}
	if s.OrderValue < 0 {
		return fmt.Errorf("order_value must be >= 0, got %.2f", s.OrderValue)
	}
	if s.ForecastConfidence != nil {
		if c := *s.ForecastConfidence; c < 0 || c > 1 {
			return fmt.Errorf("forecast_confidence must be in [0,1], got %.4f", c)
		}
	}

	// A suspended workflow must still be awaiting its decision, and a
	// resolved approval implies the workflow moved past the gate.
	if s.WorkflowStatus == workflow.StateAwaitingApproval && s.ApprovalStatus != ApprovalPending {
		return fmt.Errorf("workflow awaiting approval but approval_status is %s", s.ApprovalStatus)
	}
	if s.ApprovalStatus.IsResolved() {
		switch s.WorkflowStatus {
		case workflow.StateGeneratingPO, workflow.StateCompleted, workflow.StateRejected, workflow.StateFailed:
		default:
			return fmt.Errorf("approval resolved (%s) but workflow_status is %s", s.ApprovalStatus, s.WorkflowStatus)
		}
	}

	if s.WorkflowStatus == workflow.StateFailed && s.ErrorMessage == "" {
		return fmt.Errorf("failed workflow must carry an error_message")
	}

	return nil
}

// Projection is the denormalized, queryable summary of a workflow kept in
// sync with the checkpoint. It is never the source of truth for resumption.
type Projection struct {
	WorkflowID            string         `json:"workflow_id"`
	ThreadID              string         `json:"thread_id"`
	SKUID                 string         `json:"sku_id"`
	SKU                   string         `json:"sku"`
	WorkflowStatus        workflow.State `json:"workflow_status"`
	ApprovalStatus        ApprovalStatus `json:"approval_status"`
	ApprovalRequiredLevel ApprovalLevel  `json:"approval_required_level,omitempty"`
	OrderValue            float64        `json:"order_value"`
	ForecastConfidence    *float64       `json:"forecast_confidence,omitempty"`
	RecommendedQuantity   int            `json:"recommended_quantity"`
	ErrorMessage          string         `json:"error_message,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// ProjectionOf derives the queryable summary from the live state
func ProjectionOf(s *ProcurementState) *Projection {
	return &Projection{
		WorkflowID:            s.WorkflowID,
		ThreadID:              s.ThreadID,
		SKUID:                 s.SKUID,
		SKU:                   s.SKU,
		WorkflowStatus:        s.WorkflowStatus,
		ApprovalStatus:        s.ApprovalStatus,
		ApprovalRequiredLevel: s.ApprovalRequiredLevel,
		OrderValue:            s.OrderValue,
		ForecastConfidence:    s.ForecastConfidence,
		RecommendedQuantity:   s.RecommendedQuantity,
		ErrorMessage:          s.ErrorMessage,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}
