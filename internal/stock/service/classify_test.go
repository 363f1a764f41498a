package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
	"github.com/wiphouse/wiphouse-backend/internal/stock/service"
)

var classifyNow = time.Date(2024, 3, 25, 12, 0, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func itemWith(min, max, window *int) *repository.Item {
	return &repository.Item{
		ID:               "item-1",
		UnitCode:         "raw-hose",
		ItemCode:         "HOSE-A",
		UnitsPerBox:      16,
		MinStock:         min,
		MaxStock:         max,
		ExpiryWindowDays: window,
	}
}

func expiryPolicy(t *testing.T) service.UnitPolicy {
	t.Helper()
	p, ok := service.PolicyFor(service.UnitRawHose)
	require.True(t, ok)
	return p
}

func plainPolicy(t *testing.T) service.UnitPolicy {
	t.Helper()
	p, ok := service.PolicyFor(service.UnitMolded)
	require.True(t, ok)
	return p
}

func TestClassify_ShortageBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		inclusive bool
		want      string
	}{
		{"inclusive at minimum is shortage", 10, true, service.StatusShortage},
		{"inclusive below minimum is shortage", 9, true, service.StatusShortage},
		{"inclusive above minimum is normal", 11, true, service.StatusNormal},
		{"inclusive zero stock is shortage", 0, true, service.StatusShortage},
		{"exclusive at minimum is normal", 10, false, service.StatusNormal},
		{"exclusive below minimum is shortage", 9, false, service.StatusShortage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := plainPolicy(t)
			policy.ShortageInclusive = tt.inclusive

			agg := service.AggregatedStock{ItemCode: "HOSE-A", TotalBoxStock: tt.stock, RowCount: 1}
			got := service.Classify(classifyNow, agg, itemWith(intPtr(10), nil, nil), policy)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestClassify_OverstockBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		inclusive bool
		want      string
	}{
		{"exclusive at maximum is normal", 50, false, service.StatusNormal},
		{"exclusive above maximum is overstock", 51, false, service.StatusOverStock},
		{"inclusive at maximum is overstock", 50, true, service.StatusOverStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := plainPolicy(t)
			policy.OverstockInclusive = tt.inclusive

			agg := service.AggregatedStock{ItemCode: "HOSE-A", TotalBoxStock: tt.stock, RowCount: 1}
			got := service.Classify(classifyNow, agg, itemWith(nil, intPtr(50), nil), policy)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestClassify_ExpiryRules(t *testing.T) {
	tests := []struct {
		name        string
		window      int
		ageDays     int
		want        string
		wantRemDays int
	}{
		{"fresh stock is normal", 10, 2, service.StatusNormal, 8},
		{"window 10 remaining 2 is near expired", 10, 8, service.StatusNearExpired, 2},
		{"window 10 remaining 3 is near expired", 10, 7, service.StatusNearExpired, 3},
		{"window 10 remaining 4 is normal", 10, 6, service.StatusNormal, 4},
		{"past window is expired", 10, 11, service.StatusExpired, -1},
		{"at window boundary is near expired", 10, 10, service.StatusNearExpired, 0},
		{"short window 3 remaining 1 is near expired", 3, 2, service.StatusNearExpired, 1},
		{"short window 3 remaining 2 is normal", 3, 1, service.StatusNormal, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := service.AggregatedStock{
				ItemCode:      "HOSE-A",
				TotalBoxStock: 20,
				RowCount:      1,
				LastUpdated:   classifyNow.AddDate(0, 0, -tt.ageDays),
			}
			got := service.Classify(classifyNow, agg, itemWith(nil, nil, intPtr(tt.window)), expiryPolicy(t))
			assert.Equal(t, tt.want, got.Status)
			require.NotNil(t, got.DaysUntilExpiry)
			assert.Equal(t, tt.wantRemDays, *got.DaysUntilExpiry)
		})
	}
}

func TestClassify_ExpiredBeatsShortage(t *testing.T) {
	agg := service.AggregatedStock{
		ItemCode:      "HOSE-A",
		TotalBoxStock: 2, // well below minimum
		RowCount:      1,
		LastUpdated:   classifyNow.AddDate(0, 0, -30),
	}
	got := service.Classify(classifyNow, agg, itemWith(intPtr(10), nil, intPtr(10)), expiryPolicy(t))
	assert.Equal(t, service.StatusExpired, got.Status)
}

func TestClassify_ZeroStockSkipsExpiry(t *testing.T) {
	// No stock means nothing can expire; shortage still applies.
	agg := service.AggregatedStock{
		ItemCode:      "HOSE-A",
		TotalBoxStock: 0,
		RowCount:      1,
		LastUpdated:   classifyNow.AddDate(0, 0, -30),
	}
	got := service.Classify(classifyNow, agg, itemWith(intPtr(10), nil, intPtr(10)), expiryPolicy(t))
	assert.Equal(t, service.StatusShortage, got.Status)
	assert.Nil(t, got.DaysUntilExpiry)
}

func TestClassify_UnknownTimestampSkipsExpiry(t *testing.T) {
	agg := service.AggregatedStock{
		ItemCode:      "HOSE-A",
		TotalBoxStock: 20,
		RowCount:      1,
		// zero LastUpdated: none of the rows had a parseable timestamp
	}
	got := service.Classify(classifyNow, agg, itemWith(nil, nil, intPtr(10)), expiryPolicy(t))
	assert.Equal(t, service.StatusNormal, got.Status)
	assert.Nil(t, got.DaysUntilExpiry)
}

func TestClassify_UpstreamFlagOverridesComputed(t *testing.T) {
	expired := repository.FlagExpired

	// Locally the stock looks fresh, but the upstream system already
	// flagged the latest record as expired.
	agg := service.AggregatedStock{
		ItemCode:         "HOSE-A",
		TotalBoxStock:    20,
		RowCount:         1,
		LastUpdated:      classifyNow.AddDate(0, 0, -1),
		LatestExpiryFlag: &expired,
	}
	got := service.Classify(classifyNow, agg, itemWith(nil, nil, intPtr(10)), expiryPolicy(t))
	assert.Equal(t, service.StatusExpired, got.Status)
}

func TestClassify_UpstreamFlagIgnoredWithoutExpiryTracking(t *testing.T) {
	expired := repository.FlagExpired
	agg := service.AggregatedStock{
		ItemCode:         "MOLD-A",
		TotalBoxStock:    20,
		RowCount:         1,
		LatestExpiryFlag: &expired,
	}
	got := service.Classify(classifyNow, agg, nil, plainPolicy(t))
	assert.Equal(t, service.StatusNormal, got.Status)
}

func TestClassify_NilItemIsNormal(t *testing.T) {
	agg := service.AggregatedStock{ItemCode: "UNKNOWN", TotalBoxStock: 5, RowCount: 1}
	got := service.Classify(classifyNow, agg, nil, expiryPolicy(t))
	assert.Equal(t, service.StatusNormal, got.Status)
}

func TestClassify_MissingThresholdsDisableRules(t *testing.T) {
	agg := service.AggregatedStock{ItemCode: "HOSE-A", TotalBoxStock: 0, RowCount: 1}
	got := service.Classify(classifyNow, agg, itemWith(nil, nil, nil), expiryPolicy(t))
	assert.Equal(t, service.StatusNormal, got.Status)
}
