package aggregate

import (
	"fmt"
	"sort"

	"bidash/pkg/contracts/domain"
)

// SortMetrics names the metrics a summary table can be sorted by.
var SortMetrics = []string{
	"impressions", "clicks", "spend", "attributed_revenue",
	"ctr", "cpc", "cpm", "roas", "conversion_rate",
}

// SortByMetric reorders summary rows by the named metric. The sort is
// stable, so rows with equal values (and undefined metrics, which always
// sort last) keep their key order for determinism.
func SortByMetric(rows []domain.Summary, metric string, desc bool) error {
	value, err := metricValue(metric)
	if err != nil {
		return err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, iOK := value(rows[i])
		vj, jOK := value(rows[j])
		if iOK != jOK {
			return iOK // defined before undefined
		}
		if !iOK {
			return false
		}
		if desc {
			return vi > vj
		}
		return vi < vj
	})
	return nil
}

// metricValue returns an extractor for the named metric. The bool result
// reports whether the value is defined for that row.
func metricValue(metric string) (func(domain.Summary) (float64, bool), error) {
	switch metric {
	case "impressions":
		return func(s domain.Summary) (float64, bool) { return float64(s.Impressions), true }, nil
	case "clicks":
		return func(s domain.Summary) (float64, bool) { return float64(s.Clicks), true }, nil
	case "spend":
		return func(s domain.Summary) (float64, bool) { return s.Spend, true }, nil
	case "attributed_revenue":
		return func(s domain.Summary) (float64, bool) { return s.AttributedRevenue, true }, nil
	case "ctr":
		return func(s domain.Summary) (float64, bool) { return s.CTR.Value() }, nil
	case "cpc":
		return func(s domain.Summary) (float64, bool) { return s.CPC.Value() }, nil
	case "cpm":
		return func(s domain.Summary) (float64, bool) { return s.CPM.Value() }, nil
	case "roas":
		return func(s domain.Summary) (float64, bool) { return s.ROAS.Value() }, nil
	case "conversion_rate":
		return func(s domain.Summary) (float64, bool) { return s.ConversionRate.Value() }, nil
	default:
		return nil, fmt.Errorf("unknown sort metric %q", metric)
	}
}
