// Package inventory implements the reorder optimization stage: deterministic
// safety stock, reorder point and recommended quantity math over a forecast
// demand curve.
package inventory

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// Config holds optimization parameters
type Config struct {
	LeadTimeDays  int     // vendor replenishment lead time assumed for buffering
	ServiceFactor float64 // z-score applied to demand deviation, e.g. 1.65 for ~95%
}

// DefaultConfig returns the standard optimization parameters
func DefaultConfig() Config {
	return Config{
		LeadTimeDays:  7,
		ServiceFactor: 1.65,
	}
}

// Optimizer implements port.Optimizer with closed-form reorder math
type Optimizer struct {
	cfg    Config
	logger *zap.Logger
}

// NewOptimizer creates a new reorder optimizer
func NewOptimizer(cfg Config, logger *zap.Logger) *Optimizer {
	if cfg.LeadTimeDays <= 0 {
		cfg.LeadTimeDays = DefaultConfig().LeadTimeDays
	}
	if cfg.ServiceFactor <= 0 {
		cfg.ServiceFactor = DefaultConfig().ServiceFactor
	}
	return &Optimizer{cfg: cfg, logger: logger}
}

// Optimize computes safety stock, reorder point and the recommended order
// quantity from the forecast curve. All outputs are clamped to be >= 0.
func (o *Optimizer) Optimize(ctx context.Context, currentInventory int, forecast *entity.ForecastResult) (*entity.OptimizationResult, error) {
	if forecast == nil || len(forecast.Curve) == 0 {
		return nil, fmt.Errorf("forecast curve is empty")
	}

	mean, stddev := curveStats(forecast.Curve)

	leadTime := float64(o.cfg.LeadTimeDays)
	safetyStock := o.cfg.ServiceFactor * stddev * math.Sqrt(leadTime)
	reorderPoint := mean*leadTime + safetyStock

	// Order up to the full horizon's demand plus buffer, net of what is on hand
	horizonDemand := mean * float64(len(forecast.Curve))
	recommended := horizonDemand + safetyStock - float64(currentInventory)

	result := &entity.OptimizationResult{
		SchemaVersion:       entity.PayloadSchemaVersion,
		SafetyStock:         clampInt(safetyStock),
		ReorderPoint:        clampInt(reorderPoint),
		RecommendedQuantity: clampInt(recommended),
	}

	o.logger.Debug("Optimization completed",
		zap.String("sku_id", forecast.SKUID),
		zap.Int("current_inventory", currentInventory),
		zap.Int("safety_stock", result.SafetyStock),
		zap.Int("reorder_point", result.ReorderPoint),
		zap.Int("recommended_quantity", result.RecommendedQuantity))

	return result, nil
}

func curveStats(curve []float64) (mean, stddev float64) {
	var sum float64
	for _, v := range curve {
		sum += v
	}
	mean = sum / float64(len(curve))

	var variance float64
	for _, v := range curve {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(curve))

	return mean, math.Sqrt(variance)
}

// clampInt rounds up and floors at zero
func clampInt(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(v))
}

// Verify interface compliance
var _ port.Optimizer = (*Optimizer)(nil)
