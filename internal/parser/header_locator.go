package parser

import "strings"

const headerScanLimit = 15

// headerPatterns are first-column texts that mark a traditional header row.
var headerPatterns = []string{
	"item no.",
	"item no",
	"item number",
	"item",
	"no.",
	"product",
	"description",
}

// companyInfoWords disqualify a first cell that is letterhead, not a header.
var companyInfoWords = []string{
	"company", "ltd", "co", "tel", "email", "website", "contact",
}

// headerKeywords is the broad vocabulary used by the scoring strategy.
var headerKeywords = []string{
	"ITEM", "NO", "NUMBER", "PRODUCT", "DESCRIPTION", "NAME",
	"QTY", "QUANTITY", "PCS", "PIECES", "UNITS",
	"PRICE", "COST", "AMOUNT", "USD", "$", "UNIT PRICE",
	"CBM", "VOLUME", "SIZE", "DIMENSION", "M3", "CUBIC",
	"TOTAL", "SUM", "GRAND",
}

// headerStrategy tries one way of spotting the header row.
type headerStrategy func(grid Grid, tr Tracer) (int, bool)

// LocateHeader scans the grid for the most likely header row. Strategies are
// tried in order, first success wins; (0, false) means no header was found
// and the caller must surface an empty result.
func LocateHeader(grid Grid, tr Tracer) (int, bool) {
	if tr == nil {
		tr = NopTracer{}
	}

	strategies := []headerStrategy{
		locateByFirstColumnKeyword,
		locateByKeywordScore,
		locateBeforeFirstProductRow,
	}

	for _, strategy := range strategies {
		if idx, ok := strategy(grid, tr); ok {
			return idx, true
		}
	}

	tr.Trace("header", "no header row found by any strategy")
	return 0, false
}

// locateByFirstColumnKeyword accepts a row whose first cell contains a known
// header pattern, is short, and carries no company letterhead words.
func locateByFirstColumnKeyword(grid Grid, tr Tracer) (int, bool) {
	limit := len(grid)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for idx := 0; idx < limit; idx++ {
		first := firstCell(grid[idx])
		if first == "" {
			continue
		}

		lower := strings.ToLower(first)
		if !containsAny(lower, headerPatterns) {
			continue
		}
		if len(first) >= 50 {
			continue
		}
		if containsAny(lower, companyInfoWords) {
			continue
		}

		tr.Trace("header", "row %d matched first-column pattern %q", idx, first)
		return idx, true
	}
	return 0, false
}

// locateByKeywordScore accepts the first row where at least two cells look
// like column headers.
func locateByKeywordScore(grid Grid, tr Tracer) (int, bool) {
	for idx, row := range grid {
		if firstCell(row) == "" {
			continue
		}

		hits := 0
		for _, cell := range row {
			text := strings.ToUpper(strings.TrimSpace(cell))
			if text == "" {
				continue
			}
			for _, kw := range headerKeywords {
				if strings.Contains(text, kw) {
					hits++
					break
				}
			}
		}

		if hits >= 2 {
			tr.Trace("header", "row %d scored %d header-like cells", idx, hits)
			return idx, true
		}
	}
	return 0, false
}

// locateBeforeFirstProductRow finds the first product-like row and, when the
// row above it has a short alphabetic first cell, treats that row as header.
func locateBeforeFirstProductRow(grid Grid, tr Tracer) (int, bool) {
	for idx := 1; idx < len(grid); idx++ {
		first := firstCell(grid[idx])
		if first == "" || !hasAlnum(first) || len(first) <= 2 {
			continue
		}

		prev := firstCell(grid[idx-1])
		if prev == "" {
			continue
		}
		if len(prev) < 20 && hasAlpha(prev) {
			tr.Trace("header", "row %d precedes first product-like row %d", idx-1, idx)
			return idx - 1, true
		}
	}
	return 0, false
}
