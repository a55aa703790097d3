package orchestrator

import (
	domainwf "github.com/garyjia/ai-procurement/internal/domain/workflow"
)

// BuildProcurementStateMachine creates a state machine configured for the
// procurement decision graph. The approval gate is the only suspend point:
// VENDOR_SELECTION either auto-approves straight to GENERATING_PO or parks
// the workflow in AWAITING_APPROVAL until a human decision arrives.
func BuildProcurementStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StateInitialized).
		Permit(domainwf.TriggerStartForecast, domainwf.StateForecasting).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StateForecasting).
		Permit(domainwf.TriggerCompleteForecast, domainwf.StateOptimizing).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StateOptimizing).
		Permit(domainwf.TriggerCompleteOptimization, domainwf.StateVendorSelection).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StateVendorSelection).
		Permit(domainwf.TriggerAutoApprove, domainwf.StateGeneratingPO).
		Permit(domainwf.TriggerRequestApproval, domainwf.StateAwaitingApproval).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StateAwaitingApproval).
		Permit(domainwf.TriggerApprove, domainwf.StateGeneratingPO).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StateGeneratingPO).
		Permit(domainwf.TriggerCompletePO, domainwf.StateCompleted).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	// COMPLETED, REJECTED and FAILED are terminal - no outgoing transitions

	return builder.Build(initialState)
}
