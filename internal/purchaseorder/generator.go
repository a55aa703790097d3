// Package purchaseorder emits the purchase order artifact for an approved
// procurement decision as an .xlsx workbook.
package purchaseorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

const sheetName = "Purchase Order"

// Generator implements port.PurchaseOrderGenerator with excelize
type Generator struct {
	outputDir string
	logger    *zap.Logger
}

// NewGenerator creates a PO generator writing artifacts under outputDir
func NewGenerator(outputDir string, logger *zap.Logger) *Generator {
	return &Generator{
		outputDir: outputDir,
		logger:    logger,
	}
}

// Generate writes the PO workbook and returns the order record with its
// artifact path. It must only be called once the decision is approved.
func (g *Generator) Generate(ctx context.Context, state *entity.ProcurementState) (*entity.PurchaseOrder, error) {
	if state.SelectedVendor == nil {
		return nil, fmt.Errorf("no vendor selected for workflow %s", state.WorkflowID)
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	poNumber := buildPONumber(state.WorkflowID)
	vendor := state.SelectedVendor
	totalValue := float64(state.RecommendedQuantity) * vendor.UnitPrice

	artifactPath := filepath.Join(g.outputDir, poNumber+".xlsx")
	if err := g.writeWorkbook(artifactPath, poNumber, state, totalValue); err != nil {
		return nil, err
	}

	g.logger.Info("Purchase order generated",
		zap.String("workflow_id", state.WorkflowID),
		zap.String("po_number", poNumber),
		zap.String("artifact_path", artifactPath),
		zap.Float64("total_value", totalValue))

	return &entity.PurchaseOrder{
		SchemaVersion: entity.PayloadSchemaVersion,
		PONumber:      poNumber,
		WorkflowID:    state.WorkflowID,
		SKUID:         state.SKUID,
		VendorID:      vendor.VendorID,
		Quantity:      state.RecommendedQuantity,
		UnitPrice:     vendor.UnitPrice,
		TotalValue:    totalValue,
		ArtifactPath:  artifactPath,
	}, nil
}

func (g *Generator) writeWorkbook(path, poNumber string, state *entity.ProcurementState, totalValue float64) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			g.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	vendor := state.SelectedVendor
	header := [][2]interface{}{
		{"PO Number", poNumber},
		{"Issue Date", time.Now().UTC().Format("2006-01-02")},
		{"Workflow ID", state.WorkflowID},
		{"Vendor", vendor.VendorName},
		{"Vendor ID", vendor.VendorID},
		{"Lead Time (days)", vendor.LeadTimeDays},
	}
	for i, kv := range header {
		row := i + 1
		if err := g.setCell(f, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return err
		}
		if err := g.setCell(f, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
	}

	// Line item table below the header block
	lineHeaderRow := len(header) + 2
	columns := []string{"SKU ID", "Description", "Quantity", "Unit Price", "Total"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, lineHeaderRow)
		if err := g.setCell(f, cell, col); err != nil {
			return err
		}
	}
	values := []interface{}{state.SKUID, state.SKU, state.RecommendedQuantity, vendor.UnitPrice, totalValue}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, lineHeaderRow+1)
		if err := g.setCell(f, cell, v); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save purchase order workbook: %w", err)
	}
	return nil
}

func (g *Generator) setCell(f *excelize.File, cell string, value interface{}) error {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}

func buildPONumber(workflowID string) string {
	suffix := workflowID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("PO-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// Verify interface compliance
var _ port.PurchaseOrderGenerator = (*Generator)(nil)
