package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidash/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC)
}

func rec(date time.Time, platform domain.Platform, campaign string, impressions, clicks int64, spend, revenue float64) domain.MarketingRecord {
	return domain.MarketingRecord{
		Date:              date,
		Platform:          platform,
		Tactic:            "ASC",
		State:             "NY",
		Campaign:          campaign,
		Impressions:       impressions,
		Clicks:            clicks,
		Spend:             spend,
		AttributedRevenue: revenue,
	}
}

func TestGroupMarketingByDate(t *testing.T) {
	records := []domain.MarketingRecord{
		rec(day(16), domain.PlatformFacebook, "A", 1000, 20, 50, 150),
		rec(day(16), domain.PlatformGoogle, "B", 500, 10, 30, 90),
	}

	rows, err := GroupMarketing(records, domain.ByDate)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "2025-05-16", row.Key)
	assert.Equal(t, day(16), row.Date)
	assert.Equal(t, int64(1500), row.Impressions)
	assert.Equal(t, int64(30), row.Clicks)
	assert.Equal(t, 80.0, row.Spend)
	assert.Equal(t, 240.0, row.AttributedRevenue)

	roas, ok := row.ROAS.Value()
	require.True(t, ok)
	assert.Equal(t, 3.0, roas)

	ctr, ok := row.CTR.Value()
	require.True(t, ok)
	assert.Equal(t, 2.0, ctr)
}

// Group ratios must come from the summed numerators and denominators, not
// from averaging per-row ratios. A small high-CTR row must not drag the
// group toward its own ratio.
func TestGroupRatiosComeFromSums(t *testing.T) {
	records := []domain.MarketingRecord{
		rec(day(16), domain.PlatformFacebook, "big", 10000, 100, 100, 300),  // CTR 1%
		rec(day(16), domain.PlatformFacebook, "tiny", 10, 5, 1, 10),         // CTR 50%
	}

	rows, err := GroupMarketing(records, domain.ByPlatform)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	ctr, ok := rows[0].CTR.Value()
	require.True(t, ok)
	// (105 / 10010) * 100, nowhere near the 25.5 a mean of ratios gives.
	assert.InDelta(t, 1.0489, ctr, 0.001)
}

// Summing each dimension's rows must reproduce the ungrouped totals.
func TestGroupConservation(t *testing.T) {
	records := []domain.MarketingRecord{
		rec(day(16), domain.PlatformFacebook, "A", 1000, 20, 50, 150),
		rec(day(17), domain.PlatformGoogle, "B", 500, 10, 30, 90),
		rec(day(18), domain.PlatformTikTok, "C", 3000, 60, 25, 75),
		rec(day(18), domain.PlatformFacebook, "A", 2000, 40, 80, 240),
	}
	totals := Totals(records)

	for _, dim := range domain.Dimensions() {
		rows, err := GroupMarketing(records, dim)
		require.NoError(t, err)

		var impressions, clicks int64
		var spend, revenue float64
		for _, row := range rows {
			impressions += row.Impressions
			clicks += row.Clicks
			spend += row.Spend
			revenue += row.AttributedRevenue
		}
		assert.Equal(t, totals.Impressions, impressions, "dimension %s", dim)
		assert.Equal(t, totals.Clicks, clicks, "dimension %s", dim)
		assert.InDelta(t, totals.Spend, spend, 1e-9, "dimension %s", dim)
		assert.InDelta(t, totals.AttributedRevenue, revenue, 1e-9, "dimension %s", dim)
	}
}

func TestGroupOrdering(t *testing.T) {
	t.Run("date dimensions are chronological", func(t *testing.T) {
		records := []domain.MarketingRecord{
			rec(day(18), domain.PlatformFacebook, "A", 100, 1, 1, 1),
			rec(day(16), domain.PlatformFacebook, "A", 100, 1, 1, 1),
			rec(day(17), domain.PlatformFacebook, "A", 100, 1, 1, 1),
		}
		rows, err := GroupMarketing(records, domain.ByDate)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "2025-05-16", rows[0].Key)
		assert.Equal(t, "2025-05-17", rows[1].Key)
		assert.Equal(t, "2025-05-18", rows[2].Key)
	})

	t.Run("categorical dimensions keep first-seen order", func(t *testing.T) {
		records := []domain.MarketingRecord{
			rec(day(16), domain.PlatformTikTok, "C", 100, 1, 1, 1),
			rec(day(16), domain.PlatformFacebook, "A", 100, 1, 1, 1),
			rec(day(17), domain.PlatformTikTok, "C", 100, 1, 1, 1),
		}
		rows, err := GroupMarketing(records, domain.ByPlatform)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "TikTok", rows[0].Key)
		assert.Equal(t, "Facebook", rows[1].Key)
	})

	t.Run("weekdays order Monday first", func(t *testing.T) {
		// 2025-05-16 is a Friday, 2025-05-19 a Monday.
		records := []domain.MarketingRecord{
			rec(day(16), domain.PlatformFacebook, "A", 100, 1, 1, 1),
			rec(day(19), domain.PlatformFacebook, "A", 100, 1, 1, 1),
		}
		rows, err := GroupMarketing(records, domain.ByWeekday)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Monday", rows[0].Key)
		assert.Equal(t, "Friday", rows[1].Key)
	})
}

func TestGroupMarketingByWeek(t *testing.T) {
	// 2025-05-16 (Fri) and 2025-05-17 (Sat) share ISO week 20; 2025-05-19
	// (Mon) starts week 21.
	records := []domain.MarketingRecord{
		rec(day(16), domain.PlatformFacebook, "A", 100, 1, 10, 20),
		rec(day(17), domain.PlatformFacebook, "A", 100, 1, 10, 20),
		rec(day(19), domain.PlatformFacebook, "A", 100, 1, 10, 20),
	}
	rows, err := GroupMarketing(records, domain.ByWeek)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-W20", rows[0].Key)
	assert.Equal(t, int64(200), rows[0].Impressions)
	assert.Equal(t, "2025-W21", rows[1].Key)
}

func TestGroupMarketingUnknownDimension(t *testing.T) {
	_, err := GroupMarketing([]domain.MarketingRecord{
		rec(day(16), domain.PlatformFacebook, "A", 100, 1, 1, 1),
	}, "channel")
	assert.Error(t, err)
}

func TestGroupMarketingEmpty(t *testing.T) {
	rows, err := GroupMarketing(nil, domain.ByPlatform)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGroupBusiness(t *testing.T) {
	records := []domain.BusinessRecord{
		{Date: day(17), Orders: 80, NewOrders: 20, NewCustomers: 15, TotalRevenue: 4000, GrossProfit: 1500},
		{Date: day(16), Orders: 100, NewOrders: 30, NewCustomers: 25, TotalRevenue: 5000, GrossProfit: 2000},
	}

	days := GroupBusiness(records)
	require.Len(t, days, 2)
	assert.Equal(t, day(16), days[0].Date)
	assert.Equal(t, day(17), days[1].Date)

	aov, ok := days[0].AOV.Value()
	require.True(t, ok)
	assert.Equal(t, 50.0, aov)

	margin, ok := days[0].GrossMargin.Value()
	require.True(t, ok)
	assert.Equal(t, 40.0, margin)
}

func TestTotalsZeroActivity(t *testing.T) {
	totals := Totals([]domain.MarketingRecord{
		rec(day(16), domain.PlatformFacebook, "A", 0, 0, 0, 0),
	})
	assert.False(t, totals.CTR.Valid())
	assert.False(t, totals.ROAS.Valid())
}

func TestSortByMetric(t *testing.T) {
	rows := func() []domain.Summary {
		out, err := GroupMarketing([]domain.MarketingRecord{
			rec(day(16), domain.PlatformFacebook, "low", 1000, 10, 100, 100),  // ROAS 1
			rec(day(16), domain.PlatformGoogle, "none", 1000, 10, 0, 0),       // ROAS undefined
			rec(day(16), domain.PlatformTikTok, "high", 1000, 10, 100, 400),   // ROAS 4
		}, domain.ByCampaign)
		require.NoError(t, err)
		return out
	}

	t.Run("descending puts undefined last", func(t *testing.T) {
		out := rows()
		require.NoError(t, SortByMetric(out, "roas", true))
		assert.Equal(t, "high", out[0].Key)
		assert.Equal(t, "low", out[1].Key)
		assert.Equal(t, "none", out[2].Key)
	})

	t.Run("ascending also puts undefined last", func(t *testing.T) {
		out := rows()
		require.NoError(t, SortByMetric(out, "roas", false))
		assert.Equal(t, "low", out[0].Key)
		assert.Equal(t, "high", out[1].Key)
		assert.Equal(t, "none", out[2].Key)
	})

	t.Run("additive metrics sort too", func(t *testing.T) {
		out := rows()
		require.NoError(t, SortByMetric(out, "spend", true))
		assert.Equal(t, "none", out[2].Key)
	})

	t.Run("unknown metric errors", func(t *testing.T) {
		out := rows()
		assert.Error(t, SortByMetric(out, "profit", true))
	})

	t.Run("ties keep prior order", func(t *testing.T) {
		out, err := GroupMarketing([]domain.MarketingRecord{
			rec(day(16), domain.PlatformFacebook, "first", 1000, 10, 50, 100),
			rec(day(16), domain.PlatformGoogle, "second", 1000, 10, 50, 100),
		}, domain.ByCampaign)
		require.NoError(t, err)
		require.NoError(t, SortByMetric(out, "spend", true))
		assert.Equal(t, "first", out[0].Key)
		assert.Equal(t, "second", out[1].Key)
	})
}
