package domain

import (
	"fmt"
	"strings"
	"time"
)

// Dimension is a grouping key for marketing aggregation.
type Dimension string

const (
	ByPlatform Dimension = "platform"
	ByTactic   Dimension = "tactic"
	ByCampaign Dimension = "campaign"
	ByState    Dimension = "state"
	ByDate     Dimension = "date"
	ByWeek     Dimension = "week"
	ByWeekday  Dimension = "weekday"
)

// Dimensions lists all supported grouping dimensions.
func Dimensions() []Dimension {
	return []Dimension{ByPlatform, ByTactic, ByCampaign, ByState, ByDate, ByWeek, ByWeekday}
}

// ParseDimension resolves a dimension name case-insensitively.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Dimensions() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// Summary is one aggregated marketing row: summed additive fields for a
// single key value, with ratio metrics recomputed from the sums. Ratios are
// never averaged across rows; averaging per-row ratios weights a 10-click
// row the same as a 10,000-click row.
type Summary struct {
	Dimension         Dimension `json:"dimension"`
	Key               string    `json:"key"`
	Date              time.Time `json:"date,omitempty"` // set for date-grain keys
	Impressions       int64     `json:"impressions"`
	Clicks            int64     `json:"clicks"`
	Spend             float64   `json:"spend"`
	AttributedRevenue float64   `json:"attributed_revenue"`
	CTR               Metric    `json:"ctr"`
	CPC               Metric    `json:"cpc"`
	CPM               Metric    `json:"cpm"`
	ROAS              Metric    `json:"roas"`
	ConversionRate    Metric    `json:"conversion_rate"`
}

// BusinessDay is one day of aggregated business performance with its
// derived ratios.
type BusinessDay struct {
	Date             time.Time `json:"date"`
	Orders           int64     `json:"orders"`
	NewOrders        int64     `json:"new_orders"`
	NewCustomers     int64     `json:"new_customers"`
	TotalRevenue     float64   `json:"total_revenue"`
	GrossProfit      float64   `json:"gross_profit"`
	AOV              Metric    `json:"avg_order_value"`
	NewCustomerRatio Metric    `json:"new_customer_ratio"`
	GrossMargin      Metric    `json:"gross_margin"`
}

// CombinedRow is one date of the marketing/business outer join. A date seen
// by only one feed keeps its row with the other side nil, so gaps in either
// export stay visible.
type CombinedRow struct {
	Date      time.Time    `json:"date"`
	Marketing *Summary     `json:"marketing"`
	Business  *BusinessDay `json:"business"`

	// Cross metrics requiring both sides. Undefined when the needed side
	// is absent or its denominator is zero.
	AttributionRate  Metric `json:"attribution_rate"` // attributed / business revenue, percent
	BlendedROAS      Metric `json:"blended_roas"`     // attributed revenue / spend
	CAC              Metric `json:"cac"`              // spend / new customers
	AOV              Metric `json:"avg_order_value"`
	NewCustomerRatio Metric `json:"new_customer_ratio"`
	GrossMargin      Metric `json:"gross_margin"`
}
