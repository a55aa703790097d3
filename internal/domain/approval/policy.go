// Package approval implements the value/confidence routing policy that decides
// which tier of human sign-off a procurement decision requires.
package approval

import (
	"fmt"
	"time"

	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// Thresholds defines the decision boundaries for approval routing.
// The boundaries are configuration, not constants; callers load them from
// config and snapshot them into the audit trail via ConfigVersion.
type Thresholds struct {
	ManagerValue    float64   // order value above which a manager must sign off (default 5000)
	ExecutiveValue  float64   // order value above which an executive must sign off (default 10000)
	ConfidenceFloor float64   // forecast confidence below which low-value orders still need a manager (default 0.85)
	ConfigVersion   string    // version identifier for the audit trail
	UpdatedAt       time.Time // when this config was created
}

// DefaultThresholds returns the default routing configuration
func DefaultThresholds() Thresholds {
	return Thresholds{
		ManagerValue:    5000,
		ExecutiveValue:  10000,
		ConfidenceFloor: 0.85,
		ConfigVersion:   "v1",
		UpdatedAt:       time.Now().UTC(),
	}
}

// Validate ensures threshold values are logically consistent
func (t Thresholds) Validate() error {
	if t.ManagerValue < 0 {
		return fmt.Errorf("ManagerValue must be >= 0, got %.2f", t.ManagerValue)
	}
	if t.ExecutiveValue <= t.ManagerValue {
		return fmt.Errorf("ExecutiveValue must be greater than ManagerValue (executive: %.2f, manager: %.2f)",
			t.ExecutiveValue, t.ManagerValue)
	}
	if t.ConfidenceFloor < 0.0 || t.ConfidenceFloor > 1.0 {
		return fmt.Errorf("ConfidenceFloor must be between 0.0 and 1.0, got %.2f", t.ConfidenceFloor)
	}
	return nil
}

// RequiredLevel maps order value and forecast confidence to the approval tier.
// Ties break toward the stricter tier: the ExecutiveValue boundary belongs to
// EXECUTIVE and the ManagerValue boundary to the low-value branch. A missing
// confidence is treated as below the floor, never silently defaulted upward.
func (t Thresholds) RequiredLevel(orderValue float64, confidence *float64) entity.ApprovalLevel {
	switch {
	case orderValue >= t.ExecutiveValue:
		return entity.LevelExecutive
	case orderValue > t.ManagerValue:
		return entity.LevelManager
	case confidence == nil || *confidence < t.ConfidenceFloor:
		return entity.LevelManager
	default:
		return entity.LevelNone
	}
}

// Rationale produces the audit-trail explanation for a routing decision
func (t Thresholds) Rationale(orderValue float64, confidence *float64, level entity.ApprovalLevel) string {
	switch level {
	case entity.LevelExecutive:
		return fmt.Sprintf("order value %.2f >= executive threshold %.2f", orderValue, t.ExecutiveValue)
	case entity.LevelManager:
		if orderValue > t.ManagerValue {
			return fmt.Sprintf("order value %.2f in (%.2f, %.2f]", orderValue, t.ManagerValue, t.ExecutiveValue)
		}
		if confidence == nil {
			return fmt.Sprintf("order value %.2f <= %.2f but forecast confidence absent", orderValue, t.ManagerValue)
		}
		return fmt.Sprintf("order value %.2f <= %.2f but forecast confidence %.2f < %.2f",
			orderValue, t.ManagerValue, *confidence, t.ConfidenceFloor)
	default:
		c := 0.0
		if confidence != nil {
			c = *confidence
		}
		return fmt.Sprintf("auto-approved: order value %.2f <= %.2f and forecast confidence %.2f >= %.2f",
			orderValue, t.ManagerValue, c, t.ConfidenceFloor)
	}
}
