package http

import (
	"bidash/internal/aggregate"
	"bidash/pkg/contracts/domain"
)

// sortSummary reorders summary rows for presentation. Delegates to the
// aggregator's deterministic sort.
func sortSummary(rows []domain.Summary, metric string, desc bool) error {
	return aggregate.SortByMetric(rows, metric, desc)
}
