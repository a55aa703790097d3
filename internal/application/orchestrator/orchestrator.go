// Package orchestrator drives procurement decisions through the workflow
// graph: forecast, optimize, select vendor, route for approval, generate the
// purchase order. Start runs until the workflow suspends or completes; Resume
// rehydrates a suspended workflow from its checkpoint and applies the human
// decision.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/approval"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
	domainwf "github.com/garyjia/ai-procurement/internal/domain/workflow"
)

// Orchestrator is the public entry point of the procurement workflow engine
type Orchestrator struct {
	workflows   port.WorkflowRepository
	auditLog    port.AuditLogRepository
	checkpoints port.CheckpointStore

	forecaster  port.Forecaster
	optimizer   port.Optimizer
	vendors     port.VendorSelector
	poGenerator port.PurchaseOrderGenerator
	notifier    port.ApprovalNotifier

	thresholds approval.Thresholds
	logger     *zap.Logger
}

// Option configures the orchestrator
type Option func(*Orchestrator)

// WithThresholds overrides the default approval routing thresholds
func WithThresholds(t approval.Thresholds) Option {
	return func(o *Orchestrator) {
		o.thresholds = t
	}
}

// WithNotifier sets the approval notifier invoked when a workflow suspends
func WithNotifier(n port.ApprovalNotifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// New creates a procurement orchestrator. The checkpoint store is an explicit
// dependency: callers pick the in-memory implementation for tests and the
// durable one for production.
func New(
	workflows port.WorkflowRepository,
	auditLog port.AuditLogRepository,
	checkpoints port.CheckpointStore,
	forecaster port.Forecaster,
	optimizer port.Optimizer,
	vendors port.VendorSelector,
	poGenerator port.PurchaseOrderGenerator,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		workflows:   workflows,
		auditLog:    auditLog,
		checkpoints: checkpoints,
		forecaster:  forecaster,
		optimizer:   optimizer,
		vendors:     vendors,
		poGenerator: poGenerator,
		thresholds:  approval.DefaultThresholds(),
		logger:      logger,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Start creates a new procurement workflow for the SKU and drives it forward
// until it suspends at the approval gate or reaches a terminal state. The
// returned state carries the generated workflow ID. On stage failure the
// workflow is durably marked FAILED and the stage error is returned.
func (o *Orchestrator) Start(ctx context.Context, skuID, sku string, currentInventory int) (*entity.ProcurementState, error) {
	if skuID == "" || sku == "" {
		return nil, fmt.Errorf("sku_id and sku are required")
	}

	workflowID := uuid.NewString()
	threadID := uuid.NewString()

	state := entity.NewProcurementState(workflowID, threadID, skuID, sku, currentInventory)

	o.logger.Info("Starting procurement workflow",
		zap.String("workflow_id", workflowID),
		zap.String("sku_id", skuID),
		zap.Int("current_inventory", currentInventory))

	if err := o.workflows.Create(ctx, entity.ProjectionOf(state)); err != nil {
		return nil, fmt.Errorf("failed to create workflow projection: %w", err)
	}

	if err := o.record(ctx, state, entity.AuditLogEntry{
		Agent:     entity.AgentOrchestrator,
		Action:    "workflow_started",
		Reasoning: "procurement workflow created",
		Inputs: map[string]interface{}{
			"sku_id":            skuID,
			"current_inventory": currentInventory,
		},
	}); err != nil {
		return nil, err
	}

	if err := o.persist(ctx, state); err != nil {
		return nil, err
	}

	if err := o.run(ctx, state); err != nil {
		return state, err
	}

	return state, nil
}

// Resume rehydrates a suspended workflow from its checkpoint, applies the
// human decision and continues execution. A workflow that is missing, not
// pending, or not suspended at the gate is rejected with a validation error
// and left untouched; a missing checkpoint for an existing projection is a
// consistency fault.
func (o *Orchestrator) Resume(ctx context.Context, workflowID string, approved bool, reviewerID, feedback string) (*entity.ProcurementState, error) {
	if reviewerID == "" {
		return nil, ErrReviewerRequired
	}

	proj, err := o.workflows.GetByWorkflowID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow projection: %w", err)
	}
	if proj == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}
	if proj.ApprovalStatus != entity.ApprovalPending {
		return nil, fmt.Errorf("%w: approval_status is %s", ErrAlreadyResolved, proj.ApprovalStatus)
	}
	if proj.WorkflowStatus != domainwf.StateAwaitingApproval {
		return nil, fmt.Errorf("%w: workflow_status is %s", ErrNotAwaitingApproval, proj.WorkflowStatus)
	}

	// The projection alone cannot resume the workflow; the forecast curve and
	// vendor details live only in the checkpoint.
	state, err := o.checkpoints.Load(ctx, proj.ThreadID)
	if err != nil {
		if errors.Is(err, port.ErrCheckpointNotFound) {
			return nil, fmt.Errorf("%w: projection exists but checkpoint missing for thread %s", ErrConsistency, proj.ThreadID)
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if state.WorkflowStatus != domainwf.StateAwaitingApproval || state.ApprovalStatus != entity.ApprovalPending {
		return nil, fmt.Errorf("%w: checkpoint state (%s/%s) disagrees with projection",
			ErrConsistency, state.WorkflowStatus, state.ApprovalStatus)
	}

	machine := BuildProcurementStateMachine(state.WorkflowStatus)

	decision := "rejected"
	trigger := domainwf.TriggerReject
	approvalStatus := entity.ApprovalRejected
	if approved {
		decision = "approved"
		trigger = domainwf.TriggerApprove
		approvalStatus = entity.ApprovalApproved
	}

	// Atomically claim the pending approval before mutating anything. The
	// conditional write is the only way a PENDING status resolves, so of any
	// concurrent resume calls exactly one proceeds past this point.
	claimed, err := o.workflows.ClaimApproval(ctx, workflowID, approvalStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to claim approval: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: concurrent decision already recorded", ErrAlreadyResolved)
	}

	o.logger.Info("Resuming procurement workflow",
		zap.String("workflow_id", workflowID),
		zap.String("decision", decision),
		zap.String("reviewer_id", reviewerID))

	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, fmt.Errorf("approval transition rejected: %w", err)
	}

	state.ApprovalStatus = approvalStatus
	state.ReviewerID = reviewerID
	state.HumanFeedback = feedback
	state.SetStatus(machine.State())

	if err := o.record(ctx, state, entity.AuditLogEntry{
		Agent:     entity.AgentHumanReview,
		Action:    "human_review",
		Reasoning: feedback,
		Inputs: map[string]interface{}{
			"reviewer_id": reviewerID,
			"approved":    approved,
		},
		Outputs: map[string]interface{}{
			"approval_status": approvalStatus.String(),
			"workflow_status": state.WorkflowStatus.String(),
		},
	}); err != nil {
		return nil, err
	}

	if err := o.persist(ctx, state); err != nil {
		return nil, err
	}

	if !approved {
		// Rejection short-circuits: no purchase order is generated.
		return state, nil
	}

	if err := o.run(ctx, state); err != nil {
		return state, err
	}

	return state, nil
}

// Get returns the projection row for a workflow
func (o *Orchestrator) Get(ctx context.Context, workflowID string) (*entity.Projection, error) {
	proj, err := o.workflows.GetByWorkflowID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow projection: %w", err)
	}
	if proj == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}
	return proj, nil
}

// ListPendingApprovals returns suspended workflows for the approval queue,
// ordered by descending order value
func (o *Orchestrator) ListPendingApprovals(ctx context.Context, level entity.ApprovalLevel) ([]*entity.Projection, error) {
	return o.workflows.ListPendingApprovals(ctx, level)
}

// List returns a page of workflow projections, newest first
func (o *Orchestrator) List(ctx context.Context, limit, offset int) ([]*entity.Projection, error) {
	return o.workflows.List(ctx, limit, offset)
}

// run executes stages in graph order until the workflow suspends or terminates
func (o *Orchestrator) run(ctx context.Context, state *entity.ProcurementState) error {
	machine := BuildProcurementStateMachine(state.WorkflowStatus)

	for !state.IsTerminal() {
		switch state.WorkflowStatus {
		case domainwf.StateInitialized:
			if err := o.fire(ctx, state, machine, domainwf.TriggerStartForecast); err != nil {
				return err
			}

		case domainwf.StateForecasting:
			if err := o.runForecast(ctx, state, machine); err != nil {
				return err
			}

		case domainwf.StateOptimizing:
			if err := o.runOptimization(ctx, state, machine); err != nil {
				return err
			}

		case domainwf.StateVendorSelection:
			suspended, err := o.runVendorSelectionAndRouting(ctx, state, machine)
			if err != nil {
				return err
			}
			if suspended {
				return nil
			}

		case domainwf.StateAwaitingApproval:
			// Resting state: control goes back to the caller, resumption
			// happens on a fresh Resume invocation.
			return nil

		case domainwf.StateGeneratingPO:
			if err := o.runPurchaseOrder(ctx, state, machine); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: unexpected workflow status %s", ErrConsistency, state.WorkflowStatus)
		}
	}

	return nil
}

func (o *Orchestrator) runForecast(ctx context.Context, state *entity.ProcurementState, machine domainwf.StateMachine) error {
	forecast, err := o.forecaster.Forecast(ctx, state.SKUID, state.SKU)
	if err != nil {
		return o.failStage(ctx, state, machine, entity.AgentForecast, "forecast", err)
	}
	if forecast.Confidence != nil {
		if c := *forecast.Confidence; c < 0 || c > 1 {
			return o.failStage(ctx, state, machine, entity.AgentForecast, "forecast",
				fmt.Errorf("forecast confidence %.4f outside [0,1]", c))
		}
	}

	// Absent confidence is legal but recorded explicitly as null.
	state.ForecastConfidence = forecast.Confidence
	state.Forecast = forecast

	if err := o.fire(ctx, state, machine, domainwf.TriggerCompleteForecast); err != nil {
		return err
	}

	if err := o.record(ctx, state, entity.AuditLogEntry{
		Agent:      entity.AgentForecast,
		Action:     "forecast_completed",
		Reasoning:  forecast.Reasoning,
		Confidence: forecast.Confidence,
		Inputs:     map[string]interface{}{"sku_id": state.SKUID},
		Outputs: map[string]interface{}{
			"horizon_days": forecast.HorizonDays,
			"periods":      len(forecast.Curve),
		},
	}); err != nil {
		return err
	}

	return o.persist(ctx, state)
}

func (o *Orchestrator) runOptimization(ctx context.Context, state *entity.ProcurementState, machine domainwf.StateMachine) error {
	result, err := o.optimizer.Optimize(ctx, state.CurrentInventory, state.Forecast)
	if err != nil {
		return o.failStage(ctx, state, machine, entity.AgentOptimization, "optimization", err)
	}
	if result.RecommendedQuantity < 0 || result.SafetyStock < 0 || result.ReorderPoint < 0 {
		return o.failStage(ctx, state, machine, entity.AgentOptimization, "optimization",
			fmt.Errorf("optimizer returned negative reorder parameters"))
	}

	state.SafetyStock = result.SafetyStock
	state.ReorderPoint = result.ReorderPoint
	state.RecommendedQuantity = result.RecommendedQuantity

	if err := o.fire(ctx, state, machine, domainwf.TriggerCompleteOptimization); err != nil {
		return err
	}

	if err := o.record(ctx, state, entity.AuditLogEntry{
		Agent:  entity.AgentOptimization,
		Action: "optimization_completed",
		Inputs: map[string]interface{}{"current_inventory": state.CurrentInventory},
		Outputs: map[string]interface{}{
			"safety_stock":         result.SafetyStock,
			"reorder_point":        result.ReorderPoint,
			"recommended_quantity": result.RecommendedQuantity,
		},
	}); err != nil {
		return err
	}

	return o.persist(ctx, state)
}

// runVendorSelectionAndRouting selects a vendor, prices the order and routes
// it through the approval policy. Returns true when the workflow suspended at
// the approval gate.
func (o *Orchestrator) runVendorSelectionAndRouting(ctx context.Context, state *entity.ProcurementState, machine domainwf.StateMachine) (bool, error) {
	vendor, err := o.vendors.SelectVendor(ctx, state.SKUID, state.SKU, state.RecommendedQuantity)
	if err != nil {
		return false, o.failStage(ctx, state, machine, entity.AgentVendorSelection, "vendor_selection", err)
	}

	orderValue := float64(state.RecommendedQuantity) * vendor.UnitPrice
	if orderValue < 0 {
		return false, o.failStage(ctx, state, machine, entity.AgentVendorSelection, "vendor_selection",
			fmt.Errorf("negative order value %.2f", orderValue))
	}

	state.SelectedVendor = vendor
	state.OrderValue = orderValue

	if err := o.record(ctx, state, entity.AuditLogEntry{
		Agent:     entity.AgentVendorSelection,
		Action:    "vendor_selected",
		Reasoning: vendor.Rationale,
		Inputs: map[string]interface{}{
			"sku_id":   state.SKUID,
			"quantity": state.RecommendedQuantity,
		},
		Outputs: map[string]interface{}{
			"vendor_id":   vendor.VendorID,
			"unit_price":  vendor.UnitPrice,
			"order_value": orderValue,
		},
	}); err != nil {
		return false, err
	}

	// Value and confidence are read once, here; routing is never recomputed.
	level := o.thresholds.RequiredLevel(orderValue, state.ForecastConfidence)
	state.ApprovalRequiredLevel = level

	trigger := domainwf.TriggerRequestApproval
	if level == entity.LevelNone {
		trigger = domainwf.TriggerAutoApprove
		state.ApprovalStatus = entity.ApprovalAutoApproved
	}

	if err := o.fire(ctx, state, machine, trigger); err != nil {
		return false, err
	}

	if err := o.record(ctx, state, entity.AuditLogEntry{
		Agent:      entity.AgentApprovalRouting,
		Action:     "approval_routed",
		Reasoning:  o.thresholds.Rationale(orderValue, state.ForecastConfidence, level),
		Confidence: state.ForecastConfidence,
		Inputs: map[string]interface{}{
			"order_value":      orderValue,
			"config_version":   o.thresholds.ConfigVersion,
			"manager_value":    o.thresholds.ManagerValue,
			"executive_value":  o.thresholds.ExecutiveValue,
			"confidence_floor": o.thresholds.ConfidenceFloor,
		},
		Outputs: map[string]interface{}{
			"required_level":  level.String(),
			"approval_status": state.ApprovalStatus.String(),
		},
	}); err != nil {
		return false, err
	}

	// The checkpoint must be durable before control returns to the caller:
	// a reviewer decision with no state to resume would be unrecoverable.
	if err := o.persist(ctx, state); err != nil {
		return false, err
	}

	if state.WorkflowStatus == domainwf.StateAwaitingApproval {
		o.notifyReviewer(ctx, state)
		return true, nil
	}

	return false, nil
}

func (o *Orchestrator) runPurchaseOrder(ctx context.Context, state *entity.ProcurementState, machine domainwf.StateMachine) error {
	po, err := o.poGenerator.Generate(ctx, state)
	if err != nil {
		return o.failStage(ctx, state, machine, entity.AgentPurchaseOrder, "po_generation", err)
	}

	state.PurchaseOrder = po

	if err := o.fire(ctx, state, machine, domainwf.TriggerCompletePO); err != nil {
		return err
	}

	if err := o.record(ctx, state, entity.AuditLogEntry{
		Agent:  entity.AgentPurchaseOrder,
		Action: "po_generated",
		Outputs: map[string]interface{}{
			"po_number":   po.PONumber,
			"vendor_id":   po.VendorID,
			"total_value": po.TotalValue,
		},
	}); err != nil {
		return err
	}

	return o.persist(ctx, state)
}

// fire advances the machine and mirrors the new state onto the record
func (o *Orchestrator) fire(ctx context.Context, state *entity.ProcurementState, machine domainwf.StateMachine, trigger domainwf.Trigger) error {
	if err := machine.Fire(ctx, trigger); err != nil {
		return fmt.Errorf("%w: trigger %s", ErrConsistency, trigger)
	}
	state.SetStatus(machine.State())
	return nil
}

// failStage durably marks the workflow FAILED and re-raises the stage error
// so the triggering caller observes the failure too.
func (o *Orchestrator) failStage(ctx context.Context, state *entity.ProcurementState, machine domainwf.StateMachine, agent, stage string, stageErr error) error {
	o.logger.Error("Procurement stage failed",
		zap.String("workflow_id", state.WorkflowID),
		zap.String("stage", stage),
		zap.Error(stageErr))

	if err := machine.Fire(ctx, domainwf.TriggerFail); err != nil {
		o.logger.Error("Failed to transition workflow to FAILED", zap.Error(err))
	}
	state.MarkFailed(stageErr.Error())

	if err := o.record(ctx, state, entity.AuditLogEntry{
		Agent:     agent,
		Action:    "stage_failed",
		Reasoning: stageErr.Error(),
		Inputs:    map[string]interface{}{"stage": stage},
	}); err != nil {
		o.logger.Error("Failed to record failure audit entry", zap.Error(err))
	}

	if err := o.persist(ctx, state); err != nil {
		o.logger.Error("Failed to persist failed workflow", zap.Error(err))
	}

	return fmt.Errorf("stage %s failed: %w", stage, stageErr)
}

// record appends the entry to the in-state trail and the queryable audit store
func (o *Orchestrator) record(ctx context.Context, state *entity.ProcurementState, entry entity.AuditLogEntry) error {
	state.AppendAudit(entry)
	persisted := state.AuditLog[len(state.AuditLog)-1]
	if err := o.auditLog.Append(ctx, &persisted); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// persist writes the checkpoint first (source of truth), then the projection
func (o *Orchestrator) persist(ctx context.Context, state *entity.ProcurementState) error {
	if err := o.checkpoints.Save(ctx, state.ThreadID, state); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	if err := o.workflows.Update(ctx, entity.ProjectionOf(state)); err != nil {
		return fmt.Errorf("failed to update workflow projection: %w", err)
	}
	return nil
}

// notifyReviewer is best-effort: the suspended state is already durable, a
// notification failure must not fail the workflow
func (o *Orchestrator) notifyReviewer(ctx context.Context, state *entity.ProcurementState) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.NotifyApprovalRequired(ctx, entity.ProjectionOf(state)); err != nil {
		o.logger.Warn("Approval notification failed",
			zap.String("workflow_id", state.WorkflowID),
			zap.String("level", state.ApprovalRequiredLevel.String()),
			zap.Error(err))
	}
}
