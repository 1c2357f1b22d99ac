package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input   string
		want    Platform
		wantErr bool
	}{
		{input: "Facebook", want: PlatformFacebook},
		{input: "facebook", want: PlatformFacebook},
		{input: "  GOOGLE  ", want: PlatformGoogle},
		{input: "TikTok", want: PlatformTikTok},
		{input: "tiktok", want: PlatformTikTok},
		{input: "Snapchat", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePlatform(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func validMarketingRecord() MarketingRecord {
	return MarketingRecord{
		Date:              time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC),
		Platform:          PlatformFacebook,
		Tactic:            "ASC",
		State:             "NY",
		Campaign:          "Spring Sale",
		Impressions:       1000,
		Clicks:            20,
		Spend:             50,
		AttributedRevenue: 150,
	}
}

func TestMarketingRecordValidate(t *testing.T) {
	t.Run("valid record passes", func(t *testing.T) {
		assert.NoError(t, validMarketingRecord().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*MarketingRecord)
	}{
		{name: "missing date", mutate: func(r *MarketingRecord) { r.Date = time.Time{} }},
		{name: "negative impressions", mutate: func(r *MarketingRecord) { r.Impressions = -1 }},
		{name: "negative clicks", mutate: func(r *MarketingRecord) { r.Clicks = -1 }},
		{name: "clicks exceed impressions", mutate: func(r *MarketingRecord) { r.Clicks = r.Impressions + 1 }},
		{name: "negative spend", mutate: func(r *MarketingRecord) { r.Spend = -0.01 }},
		{name: "negative revenue", mutate: func(r *MarketingRecord) { r.AttributedRevenue = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validMarketingRecord()
			tt.mutate(&rec)
			assert.Error(t, rec.Validate())
		})
	}

	t.Run("zero activity row is valid", func(t *testing.T) {
		rec := validMarketingRecord()
		rec.Impressions = 0
		rec.Clicks = 0
		rec.Spend = 0
		rec.AttributedRevenue = 0
		assert.NoError(t, rec.Validate())
	})
}

func TestBusinessRecordValidate(t *testing.T) {
	valid := BusinessRecord{
		Date:         time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC),
		Orders:       100,
		NewOrders:    30,
		NewCustomers: 25,
		TotalRevenue: 5000,
		GrossProfit:  2000,
	}
	assert.NoError(t, valid.Validate())

	t.Run("missing date", func(t *testing.T) {
		rec := valid
		rec.Date = time.Time{}
		assert.Error(t, rec.Validate())
	})

	t.Run("negative orders", func(t *testing.T) {
		rec := valid
		rec.Orders = -1
		assert.Error(t, rec.Validate())
	})

	t.Run("negative revenue", func(t *testing.T) {
		rec := valid
		rec.TotalRevenue = -1
		assert.Error(t, rec.Validate())
	})
}

func TestParseDimension(t *testing.T) {
	for _, dim := range Dimensions() {
		got, err := ParseDimension(string(dim))
		require.NoError(t, err)
		assert.Equal(t, dim, got)
	}

	got, err := ParseDimension("  Platform ")
	require.NoError(t, err)
	assert.Equal(t, ByPlatform, got)

	_, err = ParseDimension("channel")
	assert.Error(t, err)
}
