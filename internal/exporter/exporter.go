package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/avivpaz10/importing-costs/internal/calculator"
)

const (
	costSheet   = "Landed Costs"
	paramsSheet = "Parameters"
)

// Exporter writes a landed-cost breakdown workbook.
type Exporter struct{}

// NewExporter creates an exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportOptions is the calculated breakdown to write.
type ExportOptions struct {
	Lines  []calculator.CostLine
	Totals calculator.CostLine
	Params calculator.ShipmentParameters
}

var costHeaders = []string{
	"Product", "Quantity", "Volume (CBM)", "Volume Ratio",
	"Shipping Cost", "Shipping / Unit", "Unit Price (Local)",
	"Transport Share", "Unloading Share", "Fees Share",
	"Cost / Unit", "VAT / Unit", "Cost / Unit + VAT", "Total Cost",
}

// Export builds the workbook in memory. The caller saves or streams it.
func (e *Exporter) Export(opts ExportOptions) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", costSheet); err != nil {
		return nil, fmt.Errorf("failed to name cost sheet: %w", err)
	}
	if _, err := f.NewSheet(paramsSheet); err != nil {
		return nil, fmt.Errorf("failed to create params sheet: %w", err)
	}

	if err := e.fillCostSheet(f, opts); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.fillParamsSheet(f, opts.Params); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func (e *Exporter) fillCostSheet(f *excelize.File, opts ExportOptions) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	header := make([]interface{}, len(costHeaders))
	for i, h := range costHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(costSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(costHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(costSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	rowIdx := 2
	for _, line := range opts.Lines {
		if err := e.writeCostLine(f, rowIdx, line); err != nil {
			return err
		}
		rowIdx++
	}

	if err := e.writeCostLine(f, rowIdx, opts.Totals); err != nil {
		return err
	}
	cell := fmt.Sprintf("A%d", rowIdx)
	if err := f.SetCellStyle(costSheet, cell, fmt.Sprintf("%s%d", lastCol, rowIdx), totalStyle); err != nil {
		return err
	}

	if err := f.SetColWidth(costSheet, "A", "A", 32); err != nil {
		return err
	}
	return f.SetColWidth(costSheet, "B", lastCol, 15)
}

func (e *Exporter) writeCostLine(f *excelize.File, rowIdx int, line calculator.CostLine) error {
	row := []interface{}{
		line.Name,
		line.Quantity,
		line.TotalVolume,
		line.VolumeRatio,
		line.ShippingCost,
		line.ShippingCostPerUnit,
		line.UnitPriceLocal,
		line.LocalTransportShare,
		line.UnloadingShare,
		line.AdditionalFeesShare,
		line.FinalCostPerUnit,
		line.VATPerUnit,
		line.FinalCostPerUnitWithVAT,
		line.TotalCost,
	}
	cell := fmt.Sprintf("A%d", rowIdx)
	if err := f.SetSheetRow(costSheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write cost row %d: %w", rowIdx, err)
	}
	return nil
}

func (e *Exporter) fillParamsSheet(f *excelize.File, p calculator.ShipmentParameters) error {
	rows := [][]interface{}{
		{"Container cost (USD)", p.ContainerCost},
		{"Container volume (CBM)", p.ContainerVolume},
		{"Import tax rate", p.ImportTaxRate},
		{"USD to local rate", p.USDToLocalRate},
		{"RMB to local rate", p.RMBToLocalRate},
		{"Local transport cost", p.LocalTransportCost},
		{"Unloading cost", p.UnloadingCost},
		{"Additional fees", p.AdditionalFees},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(paramsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write params row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(paramsSheet, "A", "A", 28)
}
