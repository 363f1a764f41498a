package service

import (
	"time"

	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
)

// ClassifiedItem is one dashboard row: aggregated stock joined with
// the item master and a derived status. Ephemeral; recomputed on every
// read.
type ClassifiedItem struct {
	ItemCode        string    `json:"item_code"`
	TotalBoxStock   int       `json:"total_box_stock"`
	RowCount        int       `json:"row_count"`
	LastUpdated     time.Time `json:"last_updated"`
	DaysUntilExpiry *int      `json:"days_until_expiry,omitempty"`
	Status          string    `json:"status"`
}

// expiryOutcome is the intermediate result of the expiry rules
type expiryOutcome int

const (
	expiryNone expiryOutcome = iota
	expiryNear
	expiryExpired
)

// Classify derives the status of one aggregated stock position.
//
// Rules are evaluated in fixed priority order and the first match
// wins: expired, near-expired, shortage, overstock, normal. The order
// is a business rule; an item that is both past expiry and below its
// minimum reads as expired on the dashboard, not as shortage.
//
// item may be nil (ledger rows with no master record); any missing
// threshold just disables its rule. Classification never fails: input
// anomalies degrade toward StatusNormal.
func Classify(now time.Time, agg AggregatedStock, item *repository.Item, policy UnitPolicy) ClassifiedItem {
	ci := ClassifiedItem{
		ItemCode:      agg.ItemCode,
		TotalBoxStock: agg.TotalBoxStock,
		RowCount:      agg.RowCount,
		LastUpdated:   agg.LastUpdated,
		Status:        StatusNormal,
	}

	outcome := expiryNone
	if policy.TracksExpiry && item != nil && item.ExpiryWindowDays != nil &&
		agg.TotalBoxStock > 0 && !agg.LastUpdated.IsZero() {

		window := *item.ExpiryWindowDays
		elapsed := int(now.Sub(agg.LastUpdated).Hours() / 24)
		remaining := window - elapsed
		ci.DaysUntilExpiry = &remaining

		if elapsed > window {
			outcome = expiryExpired
		} else if remaining <= policy.NearExpiryBand(window) {
			outcome = expiryNear
		}
	}

	// An upstream precomputed flag on the most recent record wins over
	// the locally computed expiry rules, but never suppresses the
	// stock-level rules below.
	if policy.TracksExpiry && agg.TotalBoxStock > 0 && agg.LatestExpiryFlag != nil {
		switch *agg.LatestExpiryFlag {
		case repository.FlagExpired:
			outcome = expiryExpired
		case repository.FlagNearExpired:
			outcome = expiryNear
		}
	}

	switch outcome {
	case expiryExpired:
		ci.Status = StatusExpired
		return ci
	case expiryNear:
		ci.Status = StatusNearExpired
		return ci
	}

	if item != nil && item.MinStock != nil {
		min := *item.MinStock
		if policy.ShortageInclusive {
			if agg.TotalBoxStock >= 0 && agg.TotalBoxStock <= min {
				ci.Status = StatusShortage
				return ci
			}
		} else if agg.TotalBoxStock < min {
			ci.Status = StatusShortage
			return ci
		}
	}

	if item != nil && item.MaxStock != nil {
		max := *item.MaxStock
		if policy.OverstockInclusive {
			if agg.TotalBoxStock >= max {
				ci.Status = StatusOverStock
				return ci
			}
		} else if agg.TotalBoxStock > max {
			ci.Status = StatusOverStock
			return ci
		}
	}

	return ci
}
