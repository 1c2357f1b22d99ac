package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidash/internal/dataset"
	"bidash/pkg/contracts/domain"
)

const marketingHeader = "date,tactic,state,campaign,impression,clicks,spend,attributed revenue\n"
const businessHeader = "date,# of orders,# of new orders,new customers,total revenue,gross profit\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testSources(t *testing.T, dir string) dataset.Sources {
	t.Helper()
	return dataset.Sources{
		Facebook: writeFile(t, dir, "Facebook.csv", marketingHeader+
			"2025-05-16,ASC,NY,Spring Sale,1000,20,50.00,150.00\n"+
			"2025-05-18,ASC,NY,Spring Sale,2000,40,80.00,240.00\n"),
		Google: writeFile(t, dir, "Google.csv", marketingHeader+
			"2025-05-16,Search,NY,Brand,500,10,30.00,90.00\n"),
		TikTok: writeFile(t, dir, "TikTok.csv", marketingHeader+
			"2025-05-17,Spark Ads,TX,Viral Push,3000,60,25.00,75.00\n"),
		Business: writeFile(t, dir, "business.csv", businessHeader+
			"2025-05-16,100,30,25,5000.00,2000.00\n"+
			"2025-05-17,80,20,15,4000.00,1500.00\n"+
			"2025-05-19,90,25,20,4500.00,1800.00\n"),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(t *testing.T, opts ...Option) *DashboardService {
	t.Helper()
	src := testSources(t, t.TempDir())
	loader := dataset.NewLoader(dataset.Options{}, testLogger())
	return NewDashboardService(loader, src, testLogger(), opts...)
}

func day(d int) time.Time {
	return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestQueriesBeforeLoad(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = svc.Summary(ctx, Filter{}, domain.ByPlatform)
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = svc.Combined(ctx, Filter{})
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = svc.Insights(ctx, Filter{})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoadAndSummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	ds, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Len(t, ds.Marketing, 4)
	assert.Len(t, ds.Business, 3)

	rows, err := svc.Summary(ctx, Filter{}, domain.ByPlatform)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{}.Validate())
	assert.NoError(t, Filter{From: day(16), To: day(18)}.Validate())
	assert.NoError(t, Filter{From: day(16), To: day(16)}.Validate())
	assert.Error(t, Filter{From: day(18), To: day(16)}.Validate())
}

func TestSummaryFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	t.Run("date range applies to both feeds", func(t *testing.T) {
		rows, err := svc.Daily(ctx, Filter{From: day(17), To: day(18)})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2025-05-17", rows[0].Key)
		assert.Equal(t, "2025-05-18", rows[1].Key)
	})

	t.Run("platform subset", func(t *testing.T) {
		rows, err := svc.Summary(ctx, Filter{Platforms: []domain.Platform{domain.PlatformFacebook}}, domain.ByPlatform)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Facebook", rows[0].Key)
		assert.Equal(t, int64(3000), rows[0].Impressions)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := svc.Daily(ctx, Filter{From: day(18), To: day(16)})
		assert.Error(t, err)
	})

	t.Run("range matching no rows yields empty", func(t *testing.T) {
		rows, err := svc.Daily(ctx, Filter{From: day(1), To: day(2)})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestCombined(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	rows, err := svc.Combined(ctx, Filter{})
	require.NoError(t, err)
	// Marketing covers 16-18, business 16, 17 and 19: union is 4 days.
	require.Len(t, rows, 4)

	assert.NotNil(t, rows[0].Marketing)
	assert.NotNil(t, rows[0].Business)
	// 2025-05-18 is marketing only, 2025-05-19 business only.
	assert.Nil(t, rows[2].Business)
	assert.Nil(t, rows[3].Marketing)
}

func TestTopCampaigns(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	rows, err := svc.TopCampaigns(ctx, Filter{}, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first, ok := rows[0].ROAS.Value()
	require.True(t, ok)
	second, ok := rows[1].ROAS.Value()
	require.True(t, ok)
	assert.GreaterOrEqual(t, first, second)
}

func TestInsights(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	ins, err := svc.Insights(ctx, Filter{})
	require.NoError(t, err)
	assert.InDelta(t, 185.0, ins.Overview.TotalSpend, 1e-9)
	assert.Len(t, ins.Platforms, 3)
}

// A reload must not disturb readers holding the previous snapshot.
func TestReloadKeepsOldSnapshotIntact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	before, err := svc.Snapshot()
	require.NoError(t, err)
	marketingBefore := len(before.Marketing)

	require.NoError(t, svc.Load(ctx))

	after, err := svc.Snapshot()
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Len(t, before.Marketing, marketingBefore)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls int
	rows  int
}

func (n *recordingNotifier) NotifyDataUpdate(_ time.Time, marketingRows, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.rows = marketingRows
}

func TestLoadNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(t, WithNotifier(notifier))
	require.NoError(t, svc.Load(context.Background()))

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, 4, notifier.rows)
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	src := testSources(t, dir)
	loader := dataset.NewLoader(dataset.Options{}, testLogger())
	svc := NewDashboardService(loader, src, testLogger())

	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	// Break one input; the failed reload must leave the old snapshot up.
	require.NoError(t, os.WriteFile(src.Google, []byte("not,a,marketing,file\n1,2,3,4\n"), 0o644))
	require.Error(t, svc.Load(ctx))

	ds, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Len(t, ds.Marketing, 4)
}
