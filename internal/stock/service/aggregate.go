package service

import (
	"sort"
	"time"

	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
	"github.com/wiphouse/wiphouse-backend/pkg/timeparse"
)

// AggregatedStock is the current stock position of one item code,
// derived in memory from its snapshot rows. Never persisted.
//
// TotalBoxStock sums every row sharing the item code, one addend per
// physical lot. Rows are NOT deduplicated by scan code: two lots of
// the same item are two contributions. Collapsing them silently
// undercounts stock.
type AggregatedStock struct {
	ItemCode      string    `json:"item_code"`
	TotalBoxStock int       `json:"total_box_stock"`
	RowCount      int       `json:"row_count"`
	// LastUpdated is the most recent parseable timestamp among the
	// rows; the zero time means none of them parsed.
	LastUpdated time.Time `json:"last_updated"`
	// LatestExpiryFlag is the upstream flag on the most recently
	// updated row, when present.
	LatestExpiryFlag *string `json:"latest_expiry_flag,omitempty"`
}

// AggregateSnapshots groups snapshot rows by item code and sums their
// stock. Pure and deterministic: the same input set yields the same
// output regardless of row order. Rows with an empty item code are
// discarded; unparseable last_updated values are excluded from the
// max but never cause an error.
func AggregateSnapshots(rows []repository.StockSnapshotRow) []AggregatedStock {
	type acc struct {
		agg      AggregatedStock
		flagTime time.Time
		flagQR   string
	}

	byCode := make(map[string]*acc)

	for _, row := range rows {
		if row.ItemCode == "" {
			continue
		}

		a, ok := byCode[row.ItemCode]
		if !ok {
			a = &acc{agg: AggregatedStock{ItemCode: row.ItemCode}}
			byCode[row.ItemCode] = a
		}

		a.agg.TotalBoxStock += row.CurrentBoxStock
		a.agg.RowCount++

		ts, parsed := timeparse.Parse(row.LastUpdated)
		if !parsed {
			continue
		}
		a.agg.LastUpdated = timeparse.MaxTime(a.agg.LastUpdated, ts)
		// Track the flag of the most recently updated row. Scan code
		// breaks timestamp ties so reordering the input cannot flip
		// the winner.
		if ts.After(a.flagTime) || (ts.Equal(a.flagTime) && row.FullQR > a.flagQR) {
			a.flagTime = ts
			a.flagQR = row.FullQR
			a.agg.LatestExpiryFlag = row.ExpiryFlag
		}
	}

	out := make([]AggregatedStock, 0, len(byCode))
	for _, a := range byCode {
		out = append(out, a.agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ItemCode < out[j].ItemCode
	})

	return out
}
