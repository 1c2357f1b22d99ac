package exporter

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"bidash/internal/insights"
	"bidash/internal/metrics"
	"bidash/pkg/contracts/domain"
)

// Derived artifact filenames.
const (
	MarketingArtifact = "processed_marketing_data.csv"
	BusinessArtifact  = "processed_business_data.csv"
	CombinedArtifact  = "combined_daily_data.csv"
	PlatformArtifact  = "platform_summary.csv"
	TacticArtifact    = "tactic_summary.csv"
	InsightsArtifact  = "insights.json"
	WorkbookArtifact  = "dashboard_tables.xlsx"
)

const dateLayout = "2006-01-02"

// Exporter persists derived tables as flat files for reuse outside the
// dashboard.
type Exporter struct {
	csv *CSVWriter
}

// New creates an exporter rooted at the artifact directory.
func New(outputDir string, logger *slog.Logger) *Exporter {
	return &Exporter{csv: NewCSVWriter(outputDir, logger)}
}

// ExportMarketingRecords writes the cleaned marketing rows with their
// derived metrics.
func (e *Exporter) ExportMarketingRecords(records []domain.MarketingRecord) error {
	headers := []string{
		"date", "platform", "tactic", "state", "campaign",
		"impressions", "clicks", "spend", "attributed_revenue",
		"ctr", "cpc", "cpm", "roas", "conversion_rate",
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		m := metrics.Marketing(rec)
		rows = append(rows, []string{
			rec.Date.Format(dateLayout),
			rec.Platform.String(),
			rec.Tactic,
			rec.State,
			rec.Campaign,
			strconv.FormatInt(rec.Impressions, 10),
			strconv.FormatInt(rec.Clicks, 10),
			formatFloat(rec.Spend),
			formatFloat(rec.AttributedRevenue),
			m.CTR.String(),
			m.CPC.String(),
			m.CPM.String(),
			m.ROAS.String(),
			m.ConversionRate.String(),
		})
	}
	return e.csv.WriteCSV(MarketingArtifact, headers, rows)
}

// ExportBusinessRecords writes the cleaned business rows with their derived
// metrics.
func (e *Exporter) ExportBusinessRecords(records []domain.BusinessRecord) error {
	headers := []string{
		"date", "orders", "new_orders", "new_customers",
		"total_revenue", "gross_profit",
		"avg_order_value", "new_customer_ratio", "gross_margin",
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		m := metrics.Business(rec)
		rows = append(rows, []string{
			rec.Date.Format(dateLayout),
			strconv.FormatInt(rec.Orders, 10),
			strconv.FormatInt(rec.NewOrders, 10),
			strconv.FormatInt(rec.NewCustomers, 10),
			formatFloat(rec.TotalRevenue),
			formatFloat(rec.GrossProfit),
			m.AOV.String(),
			m.NewCustomerRatio.String(),
			m.GrossMargin.String(),
		})
	}
	return e.csv.WriteCSV(BusinessArtifact, headers, rows)
}

// ExportCombined writes the joined daily table. Absent sides render as
// "N/A" cells, matching the undefined-metric convention.
func (e *Exporter) ExportCombined(rows []domain.CombinedRow) error {
	headers := []string{
		"date",
		"impressions", "clicks", "spend", "attributed_revenue",
		"orders", "new_orders", "new_customers", "total_revenue", "gross_profit",
		"attribution_rate", "blended_roas", "cac",
		"avg_order_value", "new_customer_ratio", "gross_margin",
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{row.Date.Format(dateLayout)}
		if row.Marketing != nil {
			cells = append(cells,
				strconv.FormatInt(row.Marketing.Impressions, 10),
				strconv.FormatInt(row.Marketing.Clicks, 10),
				formatFloat(row.Marketing.Spend),
				formatFloat(row.Marketing.AttributedRevenue),
			)
		} else {
			cells = append(cells, "N/A", "N/A", "N/A", "N/A")
		}
		if row.Business != nil {
			cells = append(cells,
				strconv.FormatInt(row.Business.Orders, 10),
				strconv.FormatInt(row.Business.NewOrders, 10),
				strconv.FormatInt(row.Business.NewCustomers, 10),
				formatFloat(row.Business.TotalRevenue),
				formatFloat(row.Business.GrossProfit),
			)
		} else {
			cells = append(cells, "N/A", "N/A", "N/A", "N/A", "N/A")
		}
		cells = append(cells,
			row.AttributionRate.String(),
			row.BlendedROAS.String(),
			row.CAC.String(),
			row.AOV.String(),
			row.NewCustomerRatio.String(),
			row.GrossMargin.String(),
		)
		out = append(out, cells)
	}
	return e.csv.WriteCSV(CombinedArtifact, headers, out)
}

// summaryHeaders is the schema of summary artifacts; ReadSummary depends on
// the order.
var summaryHeaders = []string{
	"dimension", "key", "date",
	"impressions", "clicks", "spend", "attributed_revenue",
	"ctr", "cpc", "cpm", "roas", "conversion_rate",
}

// ExportSummary writes an aggregated summary table.
func (e *Exporter) ExportSummary(name string, rows []domain.Summary) error {
	out := make([][]string, 0, len(rows))
	for _, s := range rows {
		date := ""
		if !s.Date.IsZero() {
			date = s.Date.Format(dateLayout)
		}
		out = append(out, []string{
			string(s.Dimension),
			s.Key,
			date,
			strconv.FormatInt(s.Impressions, 10),
			strconv.FormatInt(s.Clicks, 10),
			formatFloat(s.Spend),
			formatFloat(s.AttributedRevenue),
			s.CTR.String(),
			s.CPC.String(),
			s.CPM.String(),
			s.ROAS.String(),
			s.ConversionRate.String(),
		})
	}
	return e.csv.WriteCSV(name, summaryHeaders, out)
}

// ReadSummary reads a summary artifact back, preserving row order and
// values. The inverse of ExportSummary.
func (e *Exporter) ReadSummary(name string) ([]domain.Summary, error) {
	header, rows, err := e.csv.ReadCSV(name)
	if err != nil {
		return nil, err
	}
	if len(header) != len(summaryHeaders) {
		return nil, fmt.Errorf("%s: unexpected summary header %v", name, header)
	}

	summaries := make([]domain.Summary, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(summaryHeaders) {
			return nil, fmt.Errorf("%s: row %d has %d cells, want %d", name, i+1, len(row), len(summaryHeaders))
		}
		s := domain.Summary{
			Dimension: domain.Dimension(row[0]),
			Key:       row[1],
		}
		if row[2] != "" {
			if s.Date, err = time.Parse(dateLayout, row[2]); err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
			}
			s.Date = s.Date.UTC()
		}
		if s.Impressions, err = strconv.ParseInt(row[3], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		if s.Clicks, err = strconv.ParseInt(row[4], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		if s.Spend, err = strconv.ParseFloat(row[5], 64); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		if s.AttributedRevenue, err = strconv.ParseFloat(row[6], 64); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		if s.CTR, err = domain.ParseMetric(row[7]); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		if s.CPC, err = domain.ParseMetric(row[8]); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		if s.CPM, err = domain.ParseMetric(row[9]); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		if s.ROAS, err = domain.ParseMetric(row[10]); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		if s.ConversionRate, err = domain.ParseMetric(row[11]); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i+1, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// ExportInsights writes the insight bundle as JSON.
func (e *Exporter) ExportInsights(ins *insights.Insights) error {
	return e.csv.WriteJSON(InsightsArtifact, ins)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
