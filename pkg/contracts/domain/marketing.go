package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the marketing platform a record came from.
type Platform string

const (
	PlatformFacebook Platform = "Facebook"
	PlatformGoogle   Platform = "Google"
	PlatformTikTok   Platform = "TikTok"
)

// Platforms lists all known platforms in canonical order.
func Platforms() []Platform {
	return []Platform{PlatformFacebook, PlatformGoogle, PlatformTikTok}
}

// ParsePlatform resolves a platform name case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "facebook":
		return PlatformFacebook, nil
	case "google":
		return PlatformGoogle, nil
	case "tiktok":
		return PlatformTikTok, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// String returns the canonical platform name.
func (p Platform) String() string {
	return string(p)
}

// MarketingRecord is a single day's spend line for one campaign on one
// platform, as exported by the platform's reporting tool.
type MarketingRecord struct {
	Date              time.Time `json:"date"`
	Platform          Platform  `json:"platform"`
	Tactic            string    `json:"tactic"`
	State             string    `json:"state"`
	Campaign          string    `json:"campaign"`
	Impressions       int64     `json:"impressions"`
	Clicks            int64     `json:"clicks"`
	Spend             float64   `json:"spend"`
	AttributedRevenue float64   `json:"attributed_revenue"`
}

// Validate checks the record invariants. Out-of-range rows are rejected
// rather than clamped, so a bad export surfaces instead of skewing totals.
func (r MarketingRecord) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if r.Impressions < 0 {
		return fmt.Errorf("negative impressions: %d", r.Impressions)
	}
	if r.Clicks < 0 {
		return fmt.Errorf("negative clicks: %d", r.Clicks)
	}
	if r.Clicks > r.Impressions {
		return fmt.Errorf("clicks %d exceed impressions %d", r.Clicks, r.Impressions)
	}
	if r.Spend < 0 {
		return fmt.Errorf("negative spend: %g", r.Spend)
	}
	if r.AttributedRevenue < 0 {
		return fmt.Errorf("negative attributed revenue: %g", r.AttributedRevenue)
	}
	return nil
}

// MarketingMetrics holds the per-record derived ratio metrics.
type MarketingMetrics struct {
	CTR            Metric `json:"ctr"`             // clicks / impressions, percent
	CPC            Metric `json:"cpc"`             // spend / clicks
	CPM            Metric `json:"cpm"`             // spend per 1000 impressions
	ROAS           Metric `json:"roas"`            // attributed revenue / spend
	ConversionRate Metric `json:"conversion_rate"` // attributed revenue / clicks, percent
}
