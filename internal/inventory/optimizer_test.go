package inventory

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

func flatCurve(v float64, days int) []float64 {
	curve := make([]float64, days)
	for i := range curve {
		curve[i] = v
	}
	return curve
}

func TestOptimize_FlatCurve(t *testing.T) {
	o := NewOptimizer(Config{LeadTimeDays: 7, ServiceFactor: 1.65}, zap.NewNop())

	forecast := &entity.ForecastResult{
		SKUID: "SKU-001",
		Curve: flatCurve(10, 30),
	}

	result, err := o.Optimize(context.Background(), 50, forecast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Zero variance means zero safety stock
	if result.SafetyStock != 0 {
		t.Errorf("expected safety stock 0 for flat curve, got %d", result.SafetyStock)
	}
	// mean 10 * lead time 7
	if result.ReorderPoint != 70 {
		t.Errorf("expected reorder point 70, got %d", result.ReorderPoint)
	}
	// 30 days * 10/day - 50 on hand
	if result.RecommendedQuantity != 250 {
		t.Errorf("expected recommended quantity 250, got %d", result.RecommendedQuantity)
	}
}

func TestOptimize_VariableCurveAddsBuffer(t *testing.T) {
	o := NewOptimizer(DefaultConfig(), zap.NewNop())

	forecast := &entity.ForecastResult{
		SKUID: "SKU-001",
		Curve: []float64{5, 15, 5, 15, 5, 15, 5, 15, 5, 15},
	}

	result, err := o.Optimize(context.Background(), 0, forecast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.SafetyStock <= 0 {
		t.Errorf("expected positive safety stock for variable demand, got %d", result.SafetyStock)
	}
	if result.ReorderPoint <= result.SafetyStock {
		t.Errorf("reorder point %d should exceed safety stock %d", result.ReorderPoint, result.SafetyStock)
	}
}

func TestOptimize_HighInventoryClampsToZero(t *testing.T) {
	o := NewOptimizer(DefaultConfig(), zap.NewNop())

	forecast := &entity.ForecastResult{
		SKUID: "SKU-001",
		Curve: flatCurve(1, 7),
	}

	result, err := o.Optimize(context.Background(), 10000, forecast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RecommendedQuantity != 0 {
		t.Errorf("expected recommended quantity clamped to 0, got %d", result.RecommendedQuantity)
	}
}

func TestOptimize_EmptyCurve(t *testing.T) {
	o := NewOptimizer(DefaultConfig(), zap.NewNop())

	if _, err := o.Optimize(context.Background(), 0, &entity.ForecastResult{}); err == nil {
		t.Fatal("expected error for empty curve")
	}
	if _, err := o.Optimize(context.Background(), 0, nil); err == nil {
		t.Fatal("expected error for nil forecast")
	}
}

func TestNewOptimizer_DefaultsInvalidConfig(t *testing.T) {
	o := NewOptimizer(Config{}, zap.NewNop())

	if o.cfg.LeadTimeDays != DefaultConfig().LeadTimeDays {
		t.Errorf("expected default lead time, got %d", o.cfg.LeadTimeDays)
	}
	if o.cfg.ServiceFactor != DefaultConfig().ServiceFactor {
		t.Errorf("expected default service factor, got %f", o.cfg.ServiceFactor)
	}
}
