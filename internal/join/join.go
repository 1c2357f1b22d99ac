// Package join merges per-date marketing and business summaries into one
// combined daily table.
package join

import (
	"sort"
	"time"

	"bidash/internal/metrics"
	"bidash/pkg/contracts/domain"
)

// Daily performs a full outer join of the per-date marketing summaries and
// business days on date. A date present in only one feed keeps its row with
// the other side nil; dropping it would hide the gap. Output is
// chronological over the union of dates.
func Daily(marketing []domain.Summary, business []domain.BusinessDay) []domain.CombinedRow {
	marketingByDate := make(map[time.Time]*domain.Summary, len(marketing))
	for i := range marketing {
		marketingByDate[marketing[i].Date] = &marketing[i]
	}
	businessByDate := make(map[time.Time]*domain.BusinessDay, len(business))
	for i := range business {
		businessByDate[business[i].Date] = &business[i]
	}

	dates := make([]time.Time, 0, len(marketingByDate))
	seen := make(map[time.Time]bool, len(marketingByDate))
	for date := range marketingByDate {
		dates = append(dates, date)
		seen[date] = true
	}
	for date := range businessByDate {
		if !seen[date] {
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([]domain.CombinedRow, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, combine(date, marketingByDate[date], businessByDate[date]))
	}
	return rows
}

// combine builds one joined row and its cross metrics. Cross metrics stay
// undefined when the side they need is absent.
func combine(date time.Time, m *domain.Summary, b *domain.BusinessDay) domain.CombinedRow {
	row := domain.CombinedRow{
		Date:      date,
		Marketing: m,
		Business:  b,
	}

	if m != nil {
		row.BlendedROAS = domain.Ratio(m.AttributedRevenue, m.Spend)
	}
	if b != nil {
		row.AOV = b.AOV
		row.NewCustomerRatio = b.NewCustomerRatio
		row.GrossMargin = b.GrossMargin
	}
	if m != nil && b != nil {
		row.AttributionRate = domain.Percent(m.AttributedRevenue, b.TotalRevenue)
		row.CAC = metrics.CAC(m.Spend, b.NewCustomers)
	}
	return row
}
