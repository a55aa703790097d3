package entity

// PayloadSchemaVersion tags structured payloads so they can evolve without
// breaking previously persisted checkpoints.
const PayloadSchemaVersion = "v1"

// ForecastResult is the output of the demand forecast stage
type ForecastResult struct {
	SchemaVersion string    `json:"schema_version"`
	SKUID         string    `json:"sku_id"`
	Confidence    *float64  `json:"confidence"` // nil when the model declined to score
	Curve         []float64 `json:"curve"`      // forecast units per period
	HorizonDays   int       `json:"horizon_days"`
	Reasoning     string    `json:"reasoning,omitempty"`
}

// OptimizationResult is the output of the reorder optimization stage
type OptimizationResult struct {
	SchemaVersion       string `json:"schema_version"`
	SafetyStock         int    `json:"safety_stock"`
	ReorderPoint        int    `json:"reorder_point"`
	RecommendedQuantity int    `json:"recommended_quantity"`
}

// VendorChoice is the vendor selected for a purchase decision
type VendorChoice struct {
	SchemaVersion string  `json:"schema_version"`
	VendorID      string  `json:"vendor_id"`
	VendorName    string  `json:"vendor_name"`
	UnitPrice     float64 `json:"unit_price"`
	LeadTimeDays  int     `json:"lead_time_days"`
	Reliability   float64 `json:"reliability"` // 0..1 historical fulfilment score
	Score         float64 `json:"score"`
	Rationale     string  `json:"rationale,omitempty"`
}

// PurchaseOrder is the artifact emitted once a decision is approved
type PurchaseOrder struct {
	SchemaVersion string  `json:"schema_version"`
	PONumber      string  `json:"po_number"`
	WorkflowID    string  `json:"workflow_id"`
	SKUID         string  `json:"sku_id"`
	VendorID      string  `json:"vendor_id"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	TotalValue    float64 `json:"total_value"`
	ArtifactPath  string  `json:"artifact_path,omitempty"`
}
