package entity

// ApprovalStatus tracks the human/auto approval outcome for a procurement decision
type ApprovalStatus string

const (
	ApprovalPending      ApprovalStatus = "PENDING"
	ApprovalApproved     ApprovalStatus = "APPROVED"
	ApprovalRejected     ApprovalStatus = "REJECTED"
	ApprovalAutoApproved ApprovalStatus = "AUTO_APPROVED"
)

// IsResolved returns true once the approval has reached a terminal outcome.
// A resolved approval can never go back to PENDING.
func (s ApprovalStatus) IsResolved() bool {
	switch s {
	case ApprovalApproved, ApprovalRejected, ApprovalAutoApproved:
		return true
	default:
		return false
	}
}

// String returns the string representation of the approval status
func (s ApprovalStatus) String() string {
	return string(s)
}

// ApprovalLevel is the tier of human sign-off required before a purchase order is generated
type ApprovalLevel string

const (
	LevelNone      ApprovalLevel = "NONE"
	LevelManager   ApprovalLevel = "MANAGER"
	LevelExecutive ApprovalLevel = "EXECUTIVE"
)

// IsValid returns true if the level is one of the defined tiers
func (l ApprovalLevel) IsValid() bool {
	switch l {
	case LevelNone, LevelManager, LevelExecutive:
		return true
	default:
		return false
	}
}

// String returns the string representation of the approval level
func (l ApprovalLevel) String() string {
	return string(l)
}

// Agent names used in audit log entries, one per decision stage
const (
	AgentOrchestrator    = "orchestrator"
	AgentForecast        = "forecast_agent"
	AgentOptimization    = "optimization_agent"
	AgentVendorSelection = "vendor_agent"
	AgentApprovalRouting = "approval_router"
	AgentHumanReview     = "human_reviewer"
	AgentPurchaseOrder   = "po_generator"
)
