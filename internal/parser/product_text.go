package parser

import "strings"

// specKeywords mark free-text lines that describe the product itself.
var specKeywords = []string{"wheel", "handle", "deck", "size", "color", "product size", "y bar"}

// DecomposeProductText splits a packed first-column cell into code, item
// number and an assembled description. Returns false when the text has no
// non-blank lines.
//
// Suppliers commonly stack several labeled sub-fields into one cell:
//
//	A100 scooter
//	Item No.：X1
//	Material: aluminium
//	Packing: 10pcs/ctn
func DecomposeProductText(text string) (ProductText, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return ProductText{}, false
	}

	result := ProductText{}
	if fields := strings.Fields(lines[0]); len(fields) > 0 {
		result.Code = fields[0]
	}

	var material, packing string
	var specs []string

	for _, line := range lines {
		if strings.Contains(line, "Item No.") {
			result.ItemNumber = labelValue(line, "Item No.")
			continue
		}
		if strings.Contains(line, "Material:") || strings.Contains(line, "Material：") {
			material = labelValue(line, "Material")
			continue
		}
		if strings.Contains(line, "Packing:") || strings.Contains(line, "Packing：") {
			packing = labelValue(line, "Packing")
			continue
		}
		if containsAny(strings.ToLower(line), specKeywords) {
			specs = append(specs, line)
		}
	}

	var parts []string
	if material != "" {
		parts = append(parts, "Material: "+material)
	}
	parts = append(parts, specs...)
	if packing != "" {
		parts = append(parts, "Packing: "+packing)
	}

	// Nothing labeled but more than one line: everything after the code
	// line still tells the reader something.
	if len(parts) == 0 && len(lines) > 1 {
		parts = append(parts, lines[1:]...)
	}

	result.Description = strings.Join(parts, "\n")
	return result, true
}

// labelValue extracts the text after a label, accepting both the ASCII ":"
// and the full-width "：" separator.
func labelValue(line, label string) string {
	rest := line
	if idx := strings.Index(line, label); idx >= 0 {
		rest = line[idx+len(label):]
	}
	if idx := strings.LastIndex(rest, "："); idx >= 0 {
		return strings.TrimSpace(rest[idx+len("："):])
	}
	if idx := strings.LastIndex(rest, ":"); idx >= 0 {
		return strings.TrimSpace(rest[idx+1:])
	}
	return strings.TrimSpace(rest)
}
