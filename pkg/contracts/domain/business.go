package domain

import (
	"fmt"
	"time"
)

// BusinessRecord is one day of storefront performance from the business
// metrics export.
type BusinessRecord struct {
	Date         time.Time `json:"date"`
	Orders       int64     `json:"orders"`
	NewOrders    int64     `json:"new_orders"`
	NewCustomers int64     `json:"new_customers"`
	TotalRevenue float64   `json:"total_revenue"`
	GrossProfit  float64   `json:"gross_profit"`
}

// Validate checks the record invariants.
func (r BusinessRecord) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if r.Orders < 0 {
		return fmt.Errorf("negative orders: %d", r.Orders)
	}
	if r.NewOrders < 0 {
		return fmt.Errorf("negative new orders: %d", r.NewOrders)
	}
	if r.NewCustomers < 0 {
		return fmt.Errorf("negative new customers: %d", r.NewCustomers)
	}
	if r.NewCustomers > r.Orders {
		return fmt.Errorf("new customers %d exceed orders %d", r.NewCustomers, r.Orders)
	}
	if r.TotalRevenue < 0 {
		return fmt.Errorf("negative total revenue: %g", r.TotalRevenue)
	}
	if r.GrossProfit > r.TotalRevenue {
		return fmt.Errorf("gross profit %g exceeds total revenue %g", r.GrossProfit, r.TotalRevenue)
	}
	return nil
}

// BusinessMetrics holds the per-record derived business ratios.
type BusinessMetrics struct {
	AOV              Metric `json:"avg_order_value"`    // total revenue / orders
	NewCustomerRatio Metric `json:"new_customer_ratio"` // new customers / orders
	GrossMargin      Metric `json:"gross_margin"`       // gross profit / total revenue, percent
}
