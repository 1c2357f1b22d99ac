// Package aggregate groups records by a dimension and produces summary
// rows. Additive fields are summed in a single pass; ratio metrics are then
// recomputed from the sums. Averaging per-row ratios instead would let a
// tiny campaign swing a platform average, so it is never done here.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"bidash/pkg/contracts/domain"
)

// accumulator collects additive sums for one key.
type accumulator struct {
	key         string
	bucket      time.Time // set for date-grain dimensions
	impressions int64
	clicks      int64
	spend       float64
	revenue     float64
}

// GroupMarketing aggregates marketing records by the given dimension.
// Output order is chronological for date-grain dimensions and first-seen
// otherwise.
func GroupMarketing(records []domain.MarketingRecord, dim domain.Dimension) ([]domain.Summary, error) {
	groups := make(map[string]*accumulator)
	var order []string

	for _, rec := range records {
		key, bucket, err := keyFor(rec, dim)
		if err != nil {
			return nil, err
		}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{key: key, bucket: bucket}
			groups[key] = acc
			order = append(order, key)
		}
		acc.impressions += rec.Impressions
		acc.clicks += rec.Clicks
		acc.spend += rec.Spend
		acc.revenue += rec.AttributedRevenue
	}

	if isChronological(dim) {
		sort.Slice(order, func(i, j int) bool {
			return groups[order[i]].bucket.Before(groups[order[j]].bucket)
		})
	}

	summaries := make([]domain.Summary, 0, len(order))
	for _, key := range order {
		summaries = append(summaries, summarize(dim, groups[key]))
	}
	return summaries, nil
}

// GroupBusiness aggregates business records by date, chronologically.
func GroupBusiness(records []domain.BusinessRecord) []domain.BusinessDay {
	groups := make(map[time.Time]*domain.BusinessDay)
	var order []time.Time

	for _, rec := range records {
		day, ok := groups[rec.Date]
		if !ok {
			day = &domain.BusinessDay{Date: rec.Date}
			groups[rec.Date] = day
			order = append(order, rec.Date)
		}
		day.Orders += rec.Orders
		day.NewOrders += rec.NewOrders
		day.NewCustomers += rec.NewCustomers
		day.TotalRevenue += rec.TotalRevenue
		day.GrossProfit += rec.GrossProfit
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	days := make([]domain.BusinessDay, 0, len(order))
	for _, date := range order {
		day := groups[date]
		day.AOV = domain.Ratio(day.TotalRevenue, float64(day.Orders))
		day.NewCustomerRatio = domain.Ratio(float64(day.NewCustomers), float64(day.Orders))
		day.GrossMargin = domain.Percent(day.GrossProfit, day.TotalRevenue)
		days = append(days, *day)
	}
	return days
}

// Totals collapses all marketing records into one ungrouped summary row.
func Totals(records []domain.MarketingRecord) domain.Summary {
	acc := &accumulator{key: "total"}
	for _, rec := range records {
		acc.impressions += rec.Impressions
		acc.clicks += rec.Clicks
		acc.spend += rec.Spend
		acc.revenue += rec.AttributedRevenue
	}
	return summarize("", acc)
}

// summarize recomputes the ratio metrics from the accumulated sums.
func summarize(dim domain.Dimension, acc *accumulator) domain.Summary {
	return domain.Summary{
		Dimension:         dim,
		Key:               acc.key,
		Date:              acc.bucket,
		Impressions:       acc.impressions,
		Clicks:            acc.clicks,
		Spend:             acc.spend,
		AttributedRevenue: acc.revenue,
		CTR:               domain.Percent(float64(acc.clicks), float64(acc.impressions)),
		CPC:               domain.Ratio(acc.spend, float64(acc.clicks)),
		CPM:               domain.Ratio(acc.spend, float64(acc.impressions)).Scale(1000),
		ROAS:              domain.Ratio(acc.revenue, acc.spend),
		ConversionRate:    domain.Percent(acc.revenue, float64(acc.clicks)),
	}
}

// keyFor derives the grouping key and, for date-grain dimensions, the
// sortable bucket time.
func keyFor(rec domain.MarketingRecord, dim domain.Dimension) (string, time.Time, error) {
	switch dim {
	case domain.ByPlatform:
		return rec.Platform.String(), time.Time{}, nil
	case domain.ByTactic:
		return rec.Tactic, time.Time{}, nil
	case domain.ByCampaign:
		return rec.Campaign, time.Time{}, nil
	case domain.ByState:
		return rec.State, time.Time{}, nil
	case domain.ByDate:
		return rec.Date.Format("2006-01-02"), rec.Date, nil
	case domain.ByWeek:
		year, week := rec.Date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), weekStart(rec.Date), nil
	case domain.ByWeekday:
		// Monday-first ordering, fixed bucket times keep the sort stable.
		wd := (int(rec.Date.Weekday()) + 6) % 7
		return rec.Date.Weekday().String(), time.Unix(int64(wd), 0).UTC(), nil
	default:
		return "", time.Time{}, fmt.Errorf("unknown dimension %q", dim)
	}
}

// isChronological reports whether a dimension orders by time rather than
// first-seen.
func isChronological(dim domain.Dimension) bool {
	return dim == domain.ByDate || dim == domain.ByWeek || dim == domain.ByWeekday
}

// weekStart returns the Monday of the ISO week containing t.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
