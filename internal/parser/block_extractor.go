package parser

import "strings"

// summaryKeywords in a first cell mark the end of the product block.
var summaryKeywords = []string{"TOTAL", "SUM", "GRAND TOTAL", "SUBTOTAL", "TOTALS"}

// Extract runs the full structure-inference pipeline over one grid: locate
// the header, classify columns, bound the product block and parse each row.
// Batch-level failures come back as an empty product list with a reason;
// a bad row is skipped and counted, never fatal. The function is pure over
// its inputs and safe to call from concurrent requests.
func Extract(grid Grid, tr Tracer) ExtractResult {
	if tr == nil {
		tr = NopTracer{}
	}

	headerRow, ok := LocateHeader(grid, tr)
	if !ok {
		return ExtractResult{Products: []ProductRecord{}, Reason: FailureHeaderNotFound}
	}

	roles, ok := ClassifyColumns(grid, headerRow, tr)
	if !ok {
		return ExtractResult{
			Products:  []ProductRecord{},
			HeaderRow: headerRow,
			Reason:    FailureColumnsUnresolved,
		}
	}

	startRow, endRow, ok := findProductBounds(grid, headerRow, tr)
	if !ok {
		return ExtractResult{
			Products:  []ProductRecord{},
			HeaderRow: headerRow,
			Roles:     roles.Roles(),
			Currency:  roles.Currency,
			Reason:    FailureNoProductRows,
		}
	}

	result := ExtractResult{
		Products:  []ProductRecord{},
		HeaderRow: headerRow,
		StartRow:  startRow,
		EndRow:    endRow,
		Roles:     roles.Roles(),
		Currency:  roles.Currency,
	}

	for rowIdx := startRow; rowIdx <= endRow && rowIdx < len(grid); rowIdx++ {
		record, ok := parseProductRow(grid[rowIdx], roles, rowIdx, tr)
		if !ok {
			result.SkippedRows++
			continue
		}
		result.Products = append(result.Products, record)
	}

	if len(result.Products) == 0 {
		result.Reason = FailureNoProductRows
	}
	return result
}

// findProductBounds determines the contiguous row range of product data.
// Start is the row after the header. The end row is searched with four
// strategies in order: first non-alphanumeric first cell, first summary
// keyword row, first all-text row after a numeric row, last non-empty row.
func findProductBounds(grid Grid, headerRow int, tr Tracer) (start, end int, ok bool) {
	start = headerRow + 1
	if start >= len(grid) {
		return 0, 0, false
	}

	if end, ok = endByBlankCode(grid, start); ok {
		tr.Trace("bounds", "block ends at row %d (blank product code)", end)
	} else if end, ok = endBySummaryRow(grid, start); ok {
		tr.Trace("bounds", "block ends at row %d (summary row follows)", end)
	} else if end, ok = endByPatternChange(grid, start); ok {
		tr.Trace("bounds", "block ends at row %d (data pattern change)", end)
	} else if end, ok = endByLastNonEmpty(grid, start); ok {
		tr.Trace("bounds", "block ends at last non-empty row %d", end)
	} else {
		return 0, 0, false
	}

	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

// endByBlankCode stops at the first row whose first cell has no
// alphanumeric content.
func endByBlankCode(grid Grid, start int) (int, bool) {
	for idx := start; idx < len(grid); idx++ {
		if rowEmpty(grid[idx]) {
			continue
		}
		if !hasAlnum(firstCell(grid[idx])) {
			return idx - 1, true
		}
	}
	return 0, false
}

// endBySummaryRow stops before the first TOTAL/SUM/SUBTOTAL row.
func endBySummaryRow(grid Grid, start int) (int, bool) {
	for idx := start; idx < len(grid); idx++ {
		first := strings.ToUpper(firstCell(grid[idx]))
		if first == "" {
			continue
		}
		if containsAny(first, summaryKeywords) {
			return idx - 1, true
		}
	}
	return 0, false
}

// endByPatternChange stops before the first row without any numeric cell
// that directly follows a row which had one.
func endByPatternChange(grid Grid, start int) (int, bool) {
	for idx := start; idx < len(grid); idx++ {
		if firstCell(grid[idx]) == "" {
			continue
		}

		cells, numeric := 0, 0
		for _, cell := range grid[idx] {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			cells++
			if isNumericCell(cell) {
				numeric++
			}
		}
		if cells == 0 || numeric > 0 {
			continue
		}

		prevNumeric := 0
		if idx-1 >= 0 {
			for _, cell := range grid[idx-1] {
				if isNumericCell(cell) {
					prevNumeric++
				}
			}
		}
		if prevNumeric > 0 {
			return idx - 1, true
		}
	}
	return 0, false
}

// endByLastNonEmpty falls back to the last row that holds anything at all.
func endByLastNonEmpty(grid Grid, start int) (int, bool) {
	for idx := len(grid) - 1; idx >= start; idx-- {
		if !rowEmpty(grid[idx]) {
			return idx, true
		}
	}
	return 0, false
}

// parseProductRow turns one grid row into a ProductRecord. The bool result
// is false for empty rows, rows without a product code, and rows failing
// the retention rule (code plus a positive quantity or price).
func parseProductRow(row []string, roles ColumnRoleMap, rowIdx int, tr Tracer) (ProductRecord, bool) {
	if rowEmpty(row) {
		return ProductRecord{}, false
	}

	itemCol := 0
	if col, ok := roles.Get(RoleItem); ok {
		itemCol = col
	}
	text := cellAt(row, itemCol)
	if !hasAlnum(text) {
		tr.Trace("row", "row %d skipped: no product code", rowIdx)
		return ProductRecord{}, false
	}

	info, ok := DecomposeProductText(text)
	if !ok || info.Code == "" {
		tr.Trace("row", "row %d skipped: unusable product text", rowIdx)
		return ProductRecord{}, false
	}

	record := ProductRecord{
		Code:        info.Code,
		ItemNumber:  info.ItemNumber,
		Description: info.Description,
		Currency:    roles.Currency,
	}

	if col, ok := roles.Get(RoleQuantity); ok {
		record.Quantity = ToNumber(cellAt(row, col))
	}
	if col, ok := roles.Get(RoleUnitPrice); ok {
		record.UnitPrice = ToNumber(cellAt(row, col))
	}
	if col, ok := roles.Get(RoleVolume); ok {
		record.TotalVolume = ToNumber(cellAt(row, col))
	}
	if col, ok := roles.Get(RoleDescription); ok && record.Description == "" {
		record.Description = ToText(cellAt(row, col))
	}

	if record.Quantity > 0 && record.UnitPrice > 0 {
		record.TotalPrice = record.Quantity * record.UnitPrice
	}

	if record.Quantity <= 0 && record.UnitPrice <= 0 {
		tr.Trace("row", "row %d skipped: no quantity or price for %s", rowIdx, record.Code)
		return ProductRecord{}, false
	}
	return record, true
}
