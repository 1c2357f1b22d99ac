// Package insights distills the derived tables into the headline numbers
// the dashboard's overview and recommendation views show.
package insights

import (
	"fmt"
	"time"

	"bidash/internal/aggregate"
	"bidash/pkg/contracts/domain"
)

// Overview holds whole-window totals.
type Overview struct {
	TotalSpend               float64       `json:"total_spend"`
	TotalAttributedRevenue   float64       `json:"total_attributed_revenue"`
	TotalBusinessRevenue     float64       `json:"total_business_revenue"`
	OverallROAS              domain.Metric `json:"overall_roas"`
	MarketingAttributionRate domain.Metric `json:"marketing_attribution_rate"` // percent
}

// DayPerformance captures one notable day of the combined table.
type DayPerformance struct {
	Date    time.Time     `json:"date"`
	ROAS    domain.Metric `json:"roas"`
	Spend   float64       `json:"spend"`
	Revenue float64       `json:"revenue"`
}

// PerformanceDays holds the best and worst ROAS days. Nil when no day has a
// defined ROAS.
type PerformanceDays struct {
	BestROAS  *DayPerformance `json:"best_roas"`
	WorstROAS *DayPerformance `json:"worst_roas"`
}

// WeeklyTrend is one ISO week of per-day means.
type WeeklyTrend struct {
	Week              string        `json:"week"`
	AvgSpend          float64       `json:"avg_spend"`
	AvgAttributedRev  float64       `json:"avg_attributed_revenue"`
	AvgROAS           domain.Metric `json:"avg_roas"`
	AvgBusinessRev    float64       `json:"avg_business_revenue"`
	DaysWithMarketing int           `json:"days_with_marketing"`
}

// Insights is the full insight bundle persisted as insights.json and served
// by the API.
type Insights struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	Overview        Overview         `json:"overview"`
	Platforms       []domain.Summary `json:"platforms"`
	Tactics         []domain.Summary `json:"tactics"`
	PerformanceDays PerformanceDays  `json:"performance_days"`
	WeeklyTrends    []WeeklyTrend    `json:"weekly_trends"`
}

// Build assembles insights from the loaded records and the combined daily
// table.
func Build(marketing []domain.MarketingRecord, business []domain.BusinessRecord, combined []domain.CombinedRow) (*Insights, error) {
	platforms, err := aggregate.GroupMarketing(marketing, domain.ByPlatform)
	if err != nil {
		return nil, err
	}
	tactics, err := aggregate.GroupMarketing(marketing, domain.ByTactic)
	if err != nil {
		return nil, err
	}

	totals := aggregate.Totals(marketing)
	var businessRevenue float64
	for _, rec := range business {
		businessRevenue += rec.TotalRevenue
	}

	return &Insights{
		GeneratedAt: time.Now().UTC(),
		Overview: Overview{
			TotalSpend:               totals.Spend,
			TotalAttributedRevenue:   totals.AttributedRevenue,
			TotalBusinessRevenue:     businessRevenue,
			OverallROAS:              domain.Ratio(totals.AttributedRevenue, totals.Spend),
			MarketingAttributionRate: domain.Percent(totals.AttributedRevenue, businessRevenue),
		},
		Platforms:       platforms,
		Tactics:         tactics,
		PerformanceDays: performanceDays(combined),
		WeeklyTrends:    weeklyTrends(combined),
	}, nil
}

// performanceDays finds the best and worst blended-ROAS days. Days with
// undefined ROAS (no spend) are not candidates for either extreme.
func performanceDays(combined []domain.CombinedRow) PerformanceDays {
	var best, worst *DayPerformance
	for _, row := range combined {
		roas, ok := row.BlendedROAS.Value()
		if !ok {
			continue
		}
		day := dayPerformance(row)
		if best == nil || roas > mustValue(best.ROAS) {
			best = day
		}
		if worst == nil || roas < mustValue(worst.ROAS) {
			worst = day
		}
	}
	return PerformanceDays{BestROAS: best, WorstROAS: worst}
}

func dayPerformance(row domain.CombinedRow) *DayPerformance {
	day := &DayPerformance{Date: row.Date, ROAS: row.BlendedROAS}
	if row.Marketing != nil {
		day.Spend = row.Marketing.Spend
		day.Revenue = row.Marketing.AttributedRevenue
	}
	return day
}

// mustValue reads a metric known to be defined.
func mustValue(m domain.Metric) float64 {
	v, _ := m.Value()
	return v
}

// weeklyTrends computes per-ISO-week means over the combined table. ROAS is
// recomputed from the week's summed revenue and spend, and the week's ROAS
// is undefined only when the whole week had no spend.
func weeklyTrends(combined []domain.CombinedRow) []WeeklyTrend {
	type weekAcc struct {
		key          string
		days         int
		marketing    int
		spend        float64
		attributed   float64
		businessRev  float64
	}

	weeks := make(map[string]*weekAcc)
	var order []string
	for _, row := range combined {
		year, week := row.Date.ISOWeek()
		key := fmt.Sprintf("%04d-W%02d", year, week)
		acc, ok := weeks[key]
		if !ok {
			acc = &weekAcc{key: key}
			weeks[key] = acc
			order = append(order, key)
		}
		acc.days++
		if row.Marketing != nil {
			acc.marketing++
			acc.spend += row.Marketing.Spend
			acc.attributed += row.Marketing.AttributedRevenue
		}
		if row.Business != nil {
			acc.businessRev += row.Business.TotalRevenue
		}
	}

	trends := make([]WeeklyTrend, 0, len(order))
	for _, key := range order {
		acc := weeks[key]
		trends = append(trends, WeeklyTrend{
			Week:              acc.key,
			AvgSpend:          acc.spend / float64(acc.days),
			AvgAttributedRev:  acc.attributed / float64(acc.days),
			AvgROAS:           domain.Ratio(acc.attributed, acc.spend),
			AvgBusinessRev:    acc.businessRev / float64(acc.days),
			DaysWithMarketing: acc.marketing,
		})
	}
	return trends
}
