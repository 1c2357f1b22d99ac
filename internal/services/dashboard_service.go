package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"bidash/internal/aggregate"
	"bidash/internal/dataset"
	"bidash/internal/insights"
	"bidash/internal/join"
	"bidash/pkg/contracts/domain"
)

// ErrNotLoaded is returned by queries before the first successful load.
var ErrNotLoaded = fmt.Errorf("no dataset loaded")

// UpdateNotifier is told about fresh snapshots; the websocket hub
// implements it.
type UpdateNotifier interface {
	NotifyDataUpdate(loadedAt time.Time, marketingRows, businessRows int)
}

// Filter narrows a query to a date range, a platform subset and a grouping
// dimension. Zero values mean "everything".
type Filter struct {
	From      time.Time
	To        time.Time
	Platforms []domain.Platform
}

// Validate checks filter consistency.
func (f Filter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return fmt.Errorf("filter date range inverted: %s after %s",
			f.From.Format("2006-01-02"), f.To.Format("2006-01-02"))
	}
	return nil
}

// matchesDate reports whether a date falls inside the range (inclusive).
func (f Filter) matchesDate(d time.Time) bool {
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}

// matchesPlatform reports whether a platform is in the subset.
func (f Filter) matchesPlatform(p domain.Platform) bool {
	if len(f.Platforms) == 0 {
		return true
	}
	for _, allowed := range f.Platforms {
		if allowed == p {
			return true
		}
	}
	return false
}

// DashboardService runs the pipeline and answers the dashboard's queries.
// The loaded dataset lives in an atomically swapped snapshot that is never
// mutated after load, so concurrent readers can never observe a half
// refreshed table. Every query recomputes its derived table from the
// snapshot; at this data volume recomputation is cheaper than caching.
type DashboardService struct {
	loader   *dataset.Loader
	sources  dataset.Sources
	logger   *slog.Logger
	tracer   trace.Tracer
	notifier UpdateNotifier
	queries  metric.Int64Counter

	snapshot atomic.Pointer[dataset.Dataset]
}

// Option configures the service.
type Option func(*DashboardService)

// WithNotifier wires snapshot update notifications.
func WithNotifier(n UpdateNotifier) Option {
	return func(s *DashboardService) { s.notifier = n }
}

// WithTracer wires distributed tracing for pipeline stages.
func WithTracer(t trace.Tracer) Option {
	return func(s *DashboardService) { s.tracer = t }
}

// WithMeter registers service metrics on the given meter.
func WithMeter(m metric.Meter) Option {
	return func(s *DashboardService) {
		counter, err := m.Int64Counter("bidash.queries",
			metric.WithDescription("Dashboard queries served, by view"))
		if err == nil {
			s.queries = counter
		}
	}
}

// NewDashboardService creates the service.
func NewDashboardService(loader *dataset.Loader, sources dataset.Sources, logger *slog.Logger, opts ...Option) *DashboardService {
	s := &DashboardService{
		loader:  loader,
		sources: sources,
		logger:  logger.With(slog.String("component", "dashboard_service")),
		tracer:  noop.NewTracerProvider().Tracer("dashboard_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load runs the loader and swaps in the new snapshot. Safe to call
// concurrently with queries; readers of the previous snapshot are
// unaffected.
func (s *DashboardService) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "pipeline.load")
	defer span.End()

	start := time.Now()
	ds, err := s.loader.Load(ctx, s.sources)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	s.snapshot.Store(ds)
	s.logger.InfoContext(ctx, "snapshot refreshed",
		slog.Int("marketing_records", len(ds.Marketing)),
		slog.Int("business_records", len(ds.Business)),
		slog.Int("skipped_rows", ds.SkippedRows),
		slog.Duration("duration", time.Since(start)))

	if s.notifier != nil {
		s.notifier.NotifyDataUpdate(ds.LoadedAt, len(ds.Marketing), len(ds.Business))
	}
	return nil
}

// Snapshot returns the current dataset, or ErrNotLoaded.
func (s *DashboardService) Snapshot() (*dataset.Dataset, error) {
	ds := s.snapshot.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

// Summary aggregates the filtered marketing records by a dimension.
func (s *DashboardService) Summary(ctx context.Context, f Filter, dim domain.Dimension) ([]domain.Summary, error) {
	s.countQuery(ctx, "summary")
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	return aggregate.GroupMarketing(records, dim)
}

// Daily aggregates the filtered marketing records by date.
func (s *DashboardService) Daily(ctx context.Context, f Filter) ([]domain.Summary, error) {
	return s.Summary(ctx, f, domain.ByDate)
}

// Combined returns the filtered outer-joined daily table.
func (s *DashboardService) Combined(ctx context.Context, f Filter) ([]domain.CombinedRow, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.combined")
	defer span.End()

	s.countQuery(ctx, "combined")
	marketing, business, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	daily, err := aggregate.GroupMarketing(marketing, domain.ByDate)
	if err != nil {
		return nil, err
	}
	return join.Daily(daily, aggregate.GroupBusiness(business)), nil
}

// Insights builds the insight bundle over the filtered window.
func (s *DashboardService) Insights(ctx context.Context, f Filter) (*insights.Insights, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.insights")
	defer span.End()

	s.countQuery(ctx, "insights")
	marketing, business, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	daily, err := aggregate.GroupMarketing(marketing, domain.ByDate)
	if err != nil {
		return nil, err
	}
	combined := join.Daily(daily, aggregate.GroupBusiness(business))
	return insights.Build(marketing, business, combined)
}

// TopCampaigns returns the filtered campaign summaries, best ROAS first,
// limited to n rows.
func (s *DashboardService) TopCampaigns(ctx context.Context, f Filter, n int) ([]domain.Summary, error) {
	s.countQuery(ctx, "campaigns")
	records, _, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	rows, err := aggregate.GroupMarketing(records, domain.ByCampaign)
	if err != nil {
		return nil, err
	}
	if err := aggregate.SortByMetric(rows, "roas", true); err != nil {
		return nil, err
	}
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// filtered applies the filter to the snapshot. The date range applies to
// both feeds; the platform subset only to marketing.
func (s *DashboardService) filtered(f Filter) ([]domain.MarketingRecord, []domain.BusinessRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, nil, err
	}
	ds, err := s.Snapshot()
	if err != nil {
		return nil, nil, err
	}

	marketing := make([]domain.MarketingRecord, 0, len(ds.Marketing))
	for _, rec := range ds.Marketing {
		if f.matchesDate(rec.Date) && f.matchesPlatform(rec.Platform) {
			marketing = append(marketing, rec)
		}
	}
	business := make([]domain.BusinessRecord, 0, len(ds.Business))
	for _, rec := range ds.Business {
		if f.matchesDate(rec.Date) {
			business = append(business, rec)
		}
	}
	return marketing, business, nil
}

func (s *DashboardService) countQuery(ctx context.Context, view string) {
	if s.queries != nil {
		s.queries.Add(ctx, 1, metric.WithAttributes(attribute.String("view", view)))
	}
}
