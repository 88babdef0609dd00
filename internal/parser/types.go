package parser

// Grid is a raw rectangular spreadsheet read row-major, no assumed schema.
// Cells arrive as strings from the workbook reader; empty cells are "".
type Grid [][]string

// ColumnRole is the semantic meaning assigned to a grid column.
type ColumnRole string

const (
	RoleItem        ColumnRole = "item"
	RoleDescription ColumnRole = "description"
	RoleQuantity    ColumnRole = "quantity"
	RoleUnitPrice   ColumnRole = "unit_price"
	RoleTotalAmount ColumnRole = "total_amount"
	RoleVolume      ColumnRole = "volume"
)

// Currency of a product's declared unit price.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyRMB Currency = "RMB"
)

// ColumnRoleMap maps a semantic role to its 0-based column index.
// At most one index per role; not every role need be present.
type ColumnRoleMap struct {
	columns  map[ColumnRole]int
	Currency Currency // inferred from the price header text
}

// NewColumnRoleMap returns an empty role map with the USD default.
func NewColumnRoleMap() ColumnRoleMap {
	return ColumnRoleMap{
		columns:  make(map[ColumnRole]int),
		Currency: CurrencyUSD,
	}
}

// Set assigns a column index to a role, replacing any previous assignment.
func (m ColumnRoleMap) Set(role ColumnRole, col int) {
	m.columns[role] = col
}

// Get returns the column index for a role.
func (m ColumnRoleMap) Get(role ColumnRole) (int, bool) {
	col, ok := m.columns[role]
	return col, ok
}

// Has reports whether a role has been assigned.
func (m ColumnRoleMap) Has(role ColumnRole) bool {
	_, ok := m.columns[role]
	return ok
}

// Assigned reports whether any role already claims the column.
func (m ColumnRoleMap) Assigned(col int) bool {
	for _, c := range m.columns {
		if c == col {
			return true
		}
	}
	return false
}

// Len returns the number of resolved roles.
func (m ColumnRoleMap) Len() int {
	return len(m.columns)
}

// Roles returns a plain map copy for diagnostics output.
func (m ColumnRoleMap) Roles() map[ColumnRole]int {
	out := make(map[ColumnRole]int, len(m.columns))
	for role, col := range m.columns {
		out[role] = col
	}
	return out
}

// ProductRecord is one normalized line item extracted from the grid.
type ProductRecord struct {
	Code        string   `json:"code"`
	ItemNumber  string   `json:"itemNumber"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   float64  `json:"unitPrice"`
	TotalVolume float64  `json:"totalVolume"`
	Currency    Currency `json:"currency"`
	TotalPrice  float64  `json:"totalPrice"`
}

// FailureReason classifies why a whole extraction produced no products.
type FailureReason string

const (
	FailureNone              FailureReason = ""
	FailureHeaderNotFound    FailureReason = "header_not_found"
	FailureColumnsUnresolved FailureReason = "columns_unresolved"
	FailureNoProductRows     FailureReason = "no_product_rows"
)

// ExtractResult is the outcome of one extraction pass over a grid.
// Batch-level failures yield an empty Products slice plus a Reason; per-row
// failures only bump SkippedRows.
type ExtractResult struct {
	Products    []ProductRecord    `json:"products"`
	HeaderRow   int                `json:"headerRow"`
	StartRow    int                `json:"startRow"`
	EndRow      int                `json:"endRow"`
	Roles       map[ColumnRole]int `json:"roles"`
	Currency    Currency           `json:"currency"`
	SkippedRows int                `json:"skippedRows"`
	Reason      FailureReason      `json:"reason,omitempty"`
}

// ProductText is the decomposition of a packed first-column cell.
type ProductText struct {
	Code        string `json:"code"`
	ItemNumber  string `json:"itemNumber"`
	Description string `json:"description"`
}
