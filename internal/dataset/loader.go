package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bidash/pkg/contracts/domain"
)

// On-error policies for malformed rows.
const (
	OnErrorAbort = "abort"
	OnErrorSkip  = "skip"
)

// Sources locates the four raw input files.
type Sources struct {
	Facebook string
	Google   string
	TikTok   string
	Business string
}

// Options controls loader behavior.
type Options struct {
	// OnError is OnErrorAbort (default) or OnErrorSkip. Missing columns and
	// empty files abort regardless.
	OnError string

	// ColumnAliases adds extra header spellings on top of the built-in
	// alias table.
	ColumnAliases map[string]string
}

// Dataset is the result of one load: the unified marketing collection, the
// business collection and load bookkeeping. A Dataset is never mutated
// after Load returns.
type Dataset struct {
	Marketing   []domain.MarketingRecord
	Business    []domain.BusinessRecord
	SkippedRows int
	LoadedAt    time.Time
}

// Loader reads and validates the raw CSV exports.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// NewLoader creates a loader with the given options.
func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if opts.OnError == "" {
		opts.OnError = OnErrorAbort
	}
	return &Loader{
		opts:   opts,
		logger: logger.With(slog.String("component", "dataset.loader")),
	}
}

// Load reads all four files and returns the unified dataset. The files are
// independent, so they are read concurrently; a failure in any aborts the
// whole load (a partial dashboard with silently wrong numbers is worse than
// no dashboard).
func (l *Loader) Load(ctx context.Context, src Sources) (*Dataset, error) {
	platformFiles := []struct {
		platform domain.Platform
		path     string
	}{
		{domain.PlatformFacebook, src.Facebook},
		{domain.PlatformGoogle, src.Google},
		{domain.PlatformTikTok, src.TikTok},
	}

	marketing := make([][]domain.MarketingRecord, len(platformFiles))
	skipped := make([]int, len(platformFiles)+1)
	var business []domain.BusinessRecord

	g, ctx := errgroup.WithContext(ctx)
	for i, pf := range platformFiles {
		g.Go(func() error {
			records, nSkipped, err := l.loadMarketingFile(ctx, pf.path, pf.platform)
			if err != nil {
				return err
			}
			marketing[i] = records
			skipped[i] = nSkipped
			return nil
		})
	}
	g.Go(func() error {
		records, nSkipped, err := l.loadBusinessFile(ctx, src.Business)
		if err != nil {
			return err
		}
		business = records
		skipped[len(platformFiles)] = nSkipped
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		Business: business,
		LoadedAt: time.Now().UTC(),
	}
	for i := range marketing {
		ds.Marketing = append(ds.Marketing, marketing[i]...)
	}
	for _, n := range skipped {
		ds.SkippedRows += n
	}

	if ds.SkippedRows > 0 {
		l.logger.WarnContext(ctx, "skipped malformed rows during load",
			slog.Int("skipped_rows", ds.SkippedRows))
	}
	l.logger.InfoContext(ctx, "load complete",
		slog.Int("marketing_records", len(ds.Marketing)),
		slog.Int("business_records", len(ds.Business)))

	return ds, nil
}

// loadMarketingFile reads one platform export, tagging every row with the
// source platform.
func (l *Loader) loadMarketingFile(ctx context.Context, path string, platform domain.Platform) ([]domain.MarketingRecord, int, error) {
	var records []domain.MarketingRecord
	nSkipped := 0

	err := l.readCSV(ctx, path, marketingColumns, func(idx columnIndex, row []string, line int) error {
		rec, err := parseMarketingRow(idx, row, platform)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			rowErr := &MalformedRowError{File: path, Line: line, Err: err}
			if l.opts.OnError == OnErrorSkip {
				nSkipped++
				l.logger.DebugContext(ctx, "skipping malformed row",
					slog.String("file", path),
					slog.Int("line", line),
					slog.String("error", err.Error()))
				return nil
			}
			return rowErr
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, &EmptyInputError{File: path}
	}
	return records, nSkipped, nil
}

// loadBusinessFile reads the business performance export.
func (l *Loader) loadBusinessFile(ctx context.Context, path string) ([]domain.BusinessRecord, int, error) {
	var records []domain.BusinessRecord
	nSkipped := 0

	err := l.readCSV(ctx, path, businessColumns, func(idx columnIndex, row []string, line int) error {
		rec, err := parseBusinessRow(idx, row)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			rowErr := &MalformedRowError{File: path, Line: line, Err: err}
			if l.opts.OnError == OnErrorSkip {
				nSkipped++
				l.logger.DebugContext(ctx, "skipping malformed row",
					slog.String("file", path),
					slog.Int("line", line),
					slog.String("error", err.Error()))
				return nil
			}
			return rowErr
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, &EmptyInputError{File: path}
	}
	return records, nSkipped, nil
}

// readCSV opens a file, resolves its header and feeds each data row to fn.
func (l *Loader) readCSV(ctx context.Context, path string, required []string, fn func(columnIndex, []string, int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &EmptyInputError{File: path}
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	idx := resolveColumns(header, l.opts.ColumnAliases)
	if err := idx.require(path, required); err != nil {
		return err
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return &MalformedRowError{File: path, Line: line, Err: err}
		}
		if isBlank(row) {
			continue
		}
		if err := fn(idx, row, line); err != nil {
			return err
		}
	}
}

func parseMarketingRow(idx columnIndex, row []string, platform domain.Platform) (domain.MarketingRecord, error) {
	var rec domain.MarketingRecord
	var err error

	if rec.Date, err = parseDate(idx.get(row, colDate)); err != nil {
		return rec, err
	}
	rec.Platform = platform
	rec.Tactic = idx.get(row, colTactic)
	rec.State = idx.get(row, colState)
	rec.Campaign = idx.get(row, colCampaign)
	if rec.Impressions, err = parseCount(idx.get(row, colImpressions)); err != nil {
		return rec, err
	}
	if rec.Clicks, err = parseCount(idx.get(row, colClicks)); err != nil {
		return rec, err
	}
	if rec.Spend, err = parseCurrency(idx.get(row, colSpend)); err != nil {
		return rec, err
	}
	if rec.AttributedRevenue, err = parseCurrency(idx.get(row, colAttributedRevenue)); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseBusinessRow(idx columnIndex, row []string) (domain.BusinessRecord, error) {
	var rec domain.BusinessRecord
	var err error

	if rec.Date, err = parseDate(idx.get(row, colDate)); err != nil {
		return rec, err
	}
	if rec.Orders, err = parseCount(idx.get(row, colOrders)); err != nil {
		return rec, err
	}
	if rec.NewOrders, err = parseCount(idx.get(row, colNewOrders)); err != nil {
		return rec, err
	}
	if rec.NewCustomers, err = parseCount(idx.get(row, colNewCustomers)); err != nil {
		return rec, err
	}
	if rec.TotalRevenue, err = parseCurrency(idx.get(row, colTotalRevenue)); err != nil {
		return rec, err
	}
	if rec.GrossProfit, err = parseCurrency(idx.get(row, colGrossProfit)); err != nil {
		return rec, err
	}
	return rec, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
