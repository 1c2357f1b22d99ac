// Package metrics derives ratio metrics from raw records. Every derivation
// is a pure function; a zero denominator yields the undefined sentinel,
// never zero and never a fault.
package metrics

import (
	"bidash/pkg/contracts/domain"
)

// Marketing derives the per-record marketing ratios.
func Marketing(r domain.MarketingRecord) domain.MarketingMetrics {
	return domain.MarketingMetrics{
		CTR:            domain.Percent(float64(r.Clicks), float64(r.Impressions)),
		CPC:            domain.Ratio(r.Spend, float64(r.Clicks)),
		CPM:            domain.Ratio(r.Spend, float64(r.Impressions)).Scale(1000),
		ROAS:           domain.Ratio(r.AttributedRevenue, r.Spend),
		ConversionRate: domain.Percent(r.AttributedRevenue, float64(r.Clicks)),
	}
}

// Business derives the per-record business ratios.
func Business(r domain.BusinessRecord) domain.BusinessMetrics {
	return domain.BusinessMetrics{
		AOV:              domain.Ratio(r.TotalRevenue, float64(r.Orders)),
		NewCustomerRatio: domain.Ratio(float64(r.NewCustomers), float64(r.Orders)),
		GrossMargin:      domain.Percent(r.GrossProfit, r.TotalRevenue),
	}
}

// CAC derives customer acquisition cost from marketing spend and acquired
// customers. It needs both feeds, so it lives on sums rather than a single
// record.
func CAC(spend float64, newCustomers int64) domain.Metric {
	return domain.Ratio(spend, float64(newCustomers))
}
