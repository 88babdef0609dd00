package parser

import (
	"strconv"
	"strings"
)

// ToNumber converts arbitrary cell content to a number. Blank cells, "nan"
// and unparsable text all map to 0; currency symbols and thousands
// separators are stripped before parsing. Total, never panics.
func ToNumber(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	// strip currency symbols, thousands separators and other noise
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// ToText stringifies and trims a cell; empty cells yield "".
func ToText(cell string) string {
	return strings.TrimSpace(cell)
}

// hasAlnum reports whether the text carries at least one letter or digit.
// A first cell with no alphanumeric content cannot hold a product code.
func hasAlnum(s string) bool {
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// hasAlpha reports whether the text carries at least one ASCII letter.
func hasAlpha(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// isNumericCell reports whether the cell parses directly as a number.
// Used for boundary detection, where "no numeric cells" ends the block.
func isNumericCell(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}

// rowEmpty reports whether every cell in the row is blank.
func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// firstCell returns the trimmed first cell of a row, "" for short rows.
func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(row[0])
}

// cellAt returns the trimmed cell at col, "" when the row is shorter.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// containsAny reports whether text contains any of the keywords.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
