package port

import (
	"context"

	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// Forecaster produces a demand forecast for a SKU. The engine treats the
// model as opaque; it only consumes the confidence and the curve.
type Forecaster interface {
	Forecast(ctx context.Context, skuID, sku string) (*entity.ForecastResult, error)
}

// Optimizer computes reorder parameters from current inventory and a forecast
type Optimizer interface {
	Optimize(ctx context.Context, currentInventory int, forecast *entity.ForecastResult) (*entity.OptimizationResult, error)
}

// VendorSelector picks a vendor for the recommended quantity and prices the order
type VendorSelector interface {
	SelectVendor(ctx context.Context, skuID, sku string, quantity int) (*entity.VendorChoice, error)
}

// PurchaseOrderGenerator emits the PO artifact for an approved decision
type PurchaseOrderGenerator interface {
	Generate(ctx context.Context, state *entity.ProcurementState) (*entity.PurchaseOrder, error)
}

// ApprovalNotifier tells the required reviewer tier that a workflow is
// suspended and waiting for a decision. Notification failures must never
// fail the workflow; the suspended state is already durable.
type ApprovalNotifier interface {
	NotifyApprovalRequired(ctx context.Context, p *entity.Projection) error
}
