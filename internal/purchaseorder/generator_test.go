package purchaseorder

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/domain/entity"
	"github.com/garyjia/ai-procurement/internal/domain/workflow"
)

func approvedState() *entity.ProcurementState {
	state := entity.NewProcurementState("wf-12345678-abcd", "th-1", "SKU-001", "Industrial Widget", 50)
	state.RecommendedQuantity = 120
	state.SelectedVendor = &entity.VendorChoice{
		SchemaVersion: entity.PayloadSchemaVersion,
		VendorID:      "V-FAST",
		VendorName:    "Express Traders",
		UnitPrice:     12.50,
		LeadTimeDays:  3,
		Reliability:   0.95,
	}
	state.OrderValue = 1500
	state.ApprovalStatus = entity.ApprovalAutoApproved
	state.WorkflowStatus = workflow.StateGeneratingPO
	return state
}

func TestGenerate_WritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, zap.NewNop())

	po, err := g.Generate(context.Background(), approvedState())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(po.PONumber, "PO-"))
	assert.Contains(t, po.PONumber, "wf-12345")
	assert.Equal(t, "wf-12345678-abcd", po.WorkflowID)
	assert.Equal(t, 120, po.Quantity)
	assert.Equal(t, 12.50, po.UnitPrice)
	assert.Equal(t, 1500.0, po.TotalValue)

	_, statErr := os.Stat(po.ArtifactPath)
	require.NoError(t, statErr)

	f, err := excelize.OpenFile(po.ArtifactPath)
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "Purchase Order")

	poNum, err := f.GetCellValue("Purchase Order", "B1")
	require.NoError(t, err)
	assert.Equal(t, po.PONumber, poNum)

	sku, err := f.GetCellValue("Purchase Order", "A9")
	require.NoError(t, err)
	assert.Equal(t, "SKU-001", sku)
}

func TestGenerate_NoVendorSelected(t *testing.T) {
	g := NewGenerator(t.TempDir(), zap.NewNop())

	state := approvedState()
	state.SelectedVendor = nil

	_, err := g.Generate(context.Background(), state)
	assert.Error(t, err)
}

func TestGenerate_CreatesOutputDir(t *testing.T) {
	dir := t.TempDir() + "/nested/po"
	g := NewGenerator(dir, zap.NewNop())

	po, err := g.Generate(context.Background(), approvedState())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(po.ArtifactPath, dir))
}
