package dataset

import "strings"

// Canonical column names. Raw exports vary in spelling; everything is
// resolved to these before parsing.
const (
	colDate              = "date"
	colTactic            = "tactic"
	colState             = "state"
	colCampaign          = "campaign"
	colImpressions       = "impressions"
	colClicks            = "clicks"
	colSpend             = "spend"
	colAttributedRevenue = "attributed_revenue"
	colOrders            = "orders"
	colNewOrders         = "new_orders"
	colNewCustomers      = "new_customers"
	colTotalRevenue      = "total_revenue"
	colGrossProfit       = "gross_profit"
)

var marketingColumns = []string{
	colDate, colTactic, colState, colCampaign,
	colImpressions, colClicks, colSpend, colAttributedRevenue,
}

var businessColumns = []string{
	colDate, colOrders, colNewOrders, colNewCustomers,
	colTotalRevenue, colGrossProfit,
}

// builtinAliases maps normalized header spellings seen in real exports to
// canonical column names.
var builtinAliases = map[string]string{
	"impression":         colImpressions,
	"attributed revenue": colAttributedRevenue,
	"# of orders":        colOrders,
	"# of new orders":    colNewOrders,
	"new orders":         colNewOrders,
	"new customers":      colNewCustomers,
	"total revenue":      colTotalRevenue,
	"gross profit":       colGrossProfit,
}

// normalizeHeader lowercases, trims and collapses inner whitespace so minor
// header variation does not break the load.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// columnIndex maps canonical column names to their position in a header row.
type columnIndex map[string]int

// resolveColumns builds a columnIndex from a raw header row. The extra alias
// table (from config) is consulted before the built-in one.
func resolveColumns(header []string, extraAliases map[string]string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, raw := range header {
		name := normalizeHeader(raw)
		if canonical, ok := extraAliases[name]; ok {
			name = canonical
		} else if canonical, ok := builtinAliases[name]; ok {
			name = canonical
		} else {
			name = strings.ReplaceAll(name, " ", "_")
		}
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

// require verifies all wanted columns are present, returning the first
// missing one.
func (c columnIndex) require(file string, wanted []string) error {
	for _, col := range wanted {
		if _, ok := c[col]; !ok {
			return &MissingColumnError{File: file, Column: col}
		}
	}
	return nil
}

// get returns the cell for a canonical column, or "" when the row is short.
func (c columnIndex) get(row []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
