package parser

import "strings"

// inferenceSampleRows bounds how many data rows feed role inference.
const inferenceSampleRows = 9

var quantityPatterns = []string{"QTY", "QUANTITY", "(PCS)", "PCS", "UNITS", "PIECES", "NO."}

var pricePatterns = []string{"PRICE", "COST", "AMOUNT", "USD", "$", "UNIT PRICE", "RATE"}

var volumePatterns = []string{"CBM", "VOLUME", "SIZE", "DIMENSION", "M3", "CUBIC", "SPACE"}

var rmbPatterns = []string{"RMB", "CNY", "¥", "元"}

type priceCandidate struct {
	col       int
	text      string
	unitLike  bool // contains UNIT or PER
	totalLike bool // contains TOTAL or AMOUNT
}

// ClassifyColumns assigns a semantic role to each column of the header row.
// The item role defaults to column 0. Roles left unresolved by header text
// are inferred from the data below the header. Fewer than 2 resolved roles
// rejects the result.
func ClassifyColumns(grid Grid, headerRow int, tr Tracer) (ColumnRoleMap, bool) {
	if tr == nil {
		tr = NopTracer{}
	}

	roles := NewColumnRoleMap()
	if headerRow < 0 || headerRow >= len(grid) {
		return roles, false
	}

	// First column holds the packed product text unless told otherwise.
	roles.Set(RoleItem, 0)

	header := grid[headerRow]
	var candidates []priceCandidate

	for col, cell := range header {
		text := strings.ToUpper(strings.TrimSpace(cell))
		if text == "" {
			continue
		}

		switch {
		case containsAny(text, quantityPatterns):
			// Later matches win: "Item NO." matches "NO." but a real
			// "QTY(PCS)" column further right replaces it.
			roles.Set(RoleQuantity, col)
			tr.Trace("columns", "quantity column %d: %s", col, text)
		case containsAny(text, pricePatterns):
			cand := priceCandidate{
				col:       col,
				text:      text,
				unitLike:  strings.Contains(text, "UNIT") || strings.Contains(text, "PER"),
				totalLike: strings.Contains(text, "TOTAL") || strings.Contains(text, "AMOUNT"),
			}
			candidates = append(candidates, cand)
			tr.Trace("columns", "price candidate %d: %s", col, text)
		case containsAny(text, volumePatterns):
			roles.Set(RoleVolume, col)
			tr.Trace("columns", "volume column %d: %s", col, text)
		case strings.Contains(text, "DESCRIPTION") && col != 0:
			if !roles.Has(RoleDescription) {
				roles.Set(RoleDescription, col)
			}
		}
	}

	if price, ok := selectPriceColumn(candidates); ok {
		roles.Set(RoleUnitPrice, price.col)
		roles.Currency = inferCurrency(price.text)
		tr.Trace("columns", "unit price column %d (%s), currency %s", price.col, price.text, roles.Currency)
	}
	for _, cand := range candidates {
		if cand.totalLike && !roles.Assigned(cand.col) && !roles.Has(RoleTotalAmount) {
			roles.Set(RoleTotalAmount, cand.col)
		}
	}

	inferMissingRoles(grid, headerRow, roles, tr)

	if roles.Len() < 2 {
		tr.Trace("columns", "only %d roles resolved, rejecting", roles.Len())
		return roles, false
	}
	return roles, true
}

// selectPriceColumn applies the tie-break order: first unit-price-like, then
// a lone candidate, then the leftmost non-total candidate, then leftmost.
func selectPriceColumn(candidates []priceCandidate) (priceCandidate, bool) {
	if len(candidates) == 0 {
		return priceCandidate{}, false
	}

	for _, cand := range candidates {
		if cand.unitLike {
			return cand, true
		}
	}

	if len(candidates) == 1 {
		return candidates[0], true
	}

	for _, cand := range candidates {
		if !cand.totalLike {
			return cand, true
		}
	}

	return candidates[0], true
}

// inferCurrency tags the price column currency from its header text.
func inferCurrency(headerText string) Currency {
	if containsAny(strings.ToUpper(headerText), rmbPatterns) {
		return CurrencyRMB
	}
	return CurrencyUSD
}

// inferMissingRoles fills unresolved roles by sampling data below the
// header: quantity wants mostly positive integers, price mostly positive
// numbers, volume small positive decimals. Columns already claimed by
// another role are skipped.
func inferMissingRoles(grid Grid, headerRow int, roles ColumnRoleMap, tr Tracer) {
	width := len(grid[headerRow])

	if !roles.Has(RoleQuantity) {
		if col, ok := inferColumn(grid, headerRow, width, roles, 0.7, func(v float64) bool {
			return v > 0 && v == float64(int64(v))
		}); ok {
			roles.Set(RoleQuantity, col)
			tr.Trace("columns", "inferred quantity column %d from data", col)
		}
	}

	if !roles.Has(RoleUnitPrice) {
		if col, ok := inferColumn(grid, headerRow, width, roles, 0.5, func(v float64) bool {
			return v > 0
		}); ok {
			roles.Set(RoleUnitPrice, col)
			tr.Trace("columns", "inferred price column %d from data", col)
		}
	}

	if !roles.Has(RoleVolume) {
		if col, ok := inferColumn(grid, headerRow, width, roles, 0.3, func(v float64) bool {
			return v > 0 && v < 10
		}); ok {
			roles.Set(RoleVolume, col)
			tr.Trace("columns", "inferred volume column %d from data", col)
		}
	}
}

// inferColumn returns the leftmost unassigned column whose sampled values
// satisfy accept at better than threshold.
func inferColumn(grid Grid, headerRow, width int, roles ColumnRoleMap, threshold float64, accept func(float64) bool) (int, bool) {
	endRow := headerRow + 1 + inferenceSampleRows
	if endRow > len(grid) {
		endRow = len(grid)
	}

	for col := 0; col < width; col++ {
		if roles.Assigned(col) {
			continue
		}

		matched, total := 0, 0
		for row := headerRow + 1; row < endRow; row++ {
			cell := cellAt(grid[row], col)
			if cell == "" {
				continue
			}
			total++
			if isNumericCell(cell) && accept(ToNumber(cell)) {
				matched++
			}
		}

		if total > 0 && float64(matched)/float64(total) > threshold {
			return col, true
		}
	}
	return 0, false
}
