package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

func f(v float64) *float64 { return &v }

func TestRequiredLevel(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		orderValue float64
		confidence *float64
		want       entity.ApprovalLevel
	}{
		{"high value regardless of confidence", 12000, f(0.99), entity.LevelExecutive},
		{"high value low confidence", 15000, f(0.1), entity.LevelExecutive},
		{"executive boundary belongs to executive", 10000, f(0.99), entity.LevelExecutive},
		{"mid value", 7500, f(0.99), entity.LevelManager},
		{"just above manager boundary", 5000.01, f(0.99), entity.LevelManager},
		{"manager boundary belongs to low-value branch", 5000, f(0.99), entity.LevelNone},
		{"low value high confidence", 3000, f(0.95), entity.LevelNone},
		{"low value at confidence floor", 3000, f(0.85), entity.LevelNone},
		{"low value below confidence floor", 3000, f(0.8499), entity.LevelManager},
		{"low value low confidence", 3000, f(0.5), entity.LevelManager},
		{"low value absent confidence", 3000, nil, entity.LevelManager},
		{"zero value high confidence", 0, f(0.9), entity.LevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := th.RequiredLevel(tt.orderValue, tt.confidence)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThresholds_Validate(t *testing.T) {
	valid := DefaultThresholds()
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"negative manager value", func(th *Thresholds) { th.ManagerValue = -1 }},
		{"executive below manager", func(th *Thresholds) { th.ExecutiveValue = th.ManagerValue - 1 }},
		{"executive equal to manager", func(th *Thresholds) { th.ExecutiveValue = th.ManagerValue }},
		{"confidence floor above one", func(th *Thresholds) { th.ConfidenceFloor = 1.5 }},
		{"negative confidence floor", func(th *Thresholds) { th.ConfidenceFloor = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			assert.Error(t, th.Validate())
		})
	}
}

func TestRationale_MentionsThresholds(t *testing.T) {
	th := DefaultThresholds()

	r := th.Rationale(12000, f(0.9), entity.LevelExecutive)
	assert.Contains(t, r, "10000")

	r = th.Rationale(3000, f(0.5), entity.LevelManager)
	assert.Contains(t, r, "0.85")

	r = th.Rationale(3000, nil, entity.LevelManager)
	assert.Contains(t, r, "absent")

	r = th.Rationale(3000, f(0.95), entity.LevelNone)
	assert.Contains(t, r, "auto-approved")
}
