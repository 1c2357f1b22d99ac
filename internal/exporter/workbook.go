package exporter

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"bidash/pkg/contracts/domain"
)

// WorkbookTables bundles the derived tables going into the XLSX export.
type WorkbookTables struct {
	Daily     []domain.Summary
	Platforms []domain.Summary
	Tactics   []domain.Summary
	Combined  []domain.CombinedRow
}

// ExportWorkbook writes all derived tables into one XLSX workbook, one
// sheet per table, for the spreadsheet-consuming side of the audience.
func (e *Exporter) ExportWorkbook(tables WorkbookTables) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, "Daily", tables.Daily); err != nil {
		return err
	}
	if err := writeSummarySheet(f, "Platforms", tables.Platforms); err != nil {
		return err
	}
	if err := writeSummarySheet(f, "Tactics", tables.Tactics); err != nil {
		return err
	}
	if err := writeCombinedSheet(f, "Combined", tables.Combined); err != nil {
		return err
	}

	// The default sheet is replaced by the first real one.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	path := e.csv.resolve(WorkbookArtifact)
	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, rows []domain.Summary) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{
		"Dimension", "Key", "Date", "Impressions", "Clicks", "Spend",
		"Attributed Revenue", "CTR %", "CPC", "CPM", "ROAS", "Conversion Rate %",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header on %s: %w", sheet, err)
	}

	for i, s := range rows {
		date := ""
		if !s.Date.IsZero() {
			date = s.Date.Format(dateLayout)
		}
		cells := []interface{}{
			string(s.Dimension), s.Key, date,
			s.Impressions, s.Clicks, s.Spend, s.AttributedRevenue,
			metricCell(s.CTR), metricCell(s.CPC), metricCell(s.CPM),
			metricCell(s.ROAS), metricCell(s.ConversionRate),
		}
		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, anchor, &cells); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func writeCombinedSheet(f *excelize.File, sheet string, rows []domain.CombinedRow) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{
		"Date", "Impressions", "Clicks", "Spend", "Attributed Revenue",
		"Orders", "New Customers", "Total Revenue", "Gross Profit",
		"Attribution Rate %", "Blended ROAS", "CAC", "AOV", "Gross Margin %",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header on %s: %w", sheet, err)
	}

	for i, row := range rows {
		cells := []interface{}{row.Date.Format(dateLayout)}
		if row.Marketing != nil {
			cells = append(cells, row.Marketing.Impressions, row.Marketing.Clicks,
				row.Marketing.Spend, row.Marketing.AttributedRevenue)
		} else {
			cells = append(cells, "N/A", "N/A", "N/A", "N/A")
		}
		if row.Business != nil {
			cells = append(cells, row.Business.Orders, row.Business.NewCustomers,
				row.Business.TotalRevenue, row.Business.GrossProfit)
		} else {
			cells = append(cells, "N/A", "N/A", "N/A", "N/A")
		}
		cells = append(cells,
			metricCell(row.AttributionRate), metricCell(row.BlendedROAS),
			metricCell(row.CAC), metricCell(row.AOV), metricCell(row.GrossMargin))

		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, anchor, &cells); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

// metricCell renders a metric as a number cell, or "N/A" when undefined.
func metricCell(m domain.Metric) interface{} {
	if v, ok := m.Value(); ok {
		return v
	}
	return "N/A"
}
