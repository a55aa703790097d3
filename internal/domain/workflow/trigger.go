package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerStartForecast        Trigger = "START_FORECAST"
	TriggerCompleteForecast     Trigger = "COMPLETE_FORECAST"
	TriggerCompleteOptimization Trigger = "COMPLETE_OPTIMIZATION"
	TriggerRequestApproval      Trigger = "REQUEST_APPROVAL"
	TriggerAutoApprove          Trigger = "AUTO_APPROVE"
	TriggerApprove              Trigger = "APPROVE"
	TriggerReject               Trigger = "REJECT"
	TriggerCompletePO           Trigger = "COMPLETE_PO"
	TriggerFail                 Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
