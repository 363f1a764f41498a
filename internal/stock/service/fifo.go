package service

import (
	"sort"
	"time"

	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
)

// DefaultFifoLimit is how many recommendations the dashboard shows
const DefaultFifoLimit = 10

// FifoRecommendation is one "consume this lot next" row
type FifoRecommendation struct {
	ItemCode        string     `json:"item_code"`
	FullQR          string     `json:"full_qr"`
	ProductionDate  *time.Time `json:"production_date,omitempty"`
	CurrentBoxStock int        `json:"current_box_stock"`
}

// fifoFallback sorts entries without a production date after every
// dated entry.
var fifoFallback = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// RecommendFIFO orders in-stock lots by production date ascending and
// returns the first limit entries: oldest stock first. Entries with no
// production date sort last. Pure; never mutates ledger state.
func RecommendFIFO(rows []repository.InStockRow, limit int) []FifoRecommendation {
	if limit <= 0 {
		limit = DefaultFifoLimit
	}

	sorted := make([]repository.InStockRow, len(rows))
	copy(sorted, rows)

	key := func(r repository.InStockRow) time.Time {
		if r.ProductionDate == nil {
			return fifoFallback
		}
		return *r.ProductionDate
	}

	sort.Slice(sorted, func(i, j int) bool {
		ti, tj := key(sorted[i]), key(sorted[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if sorted[i].ItemCode != sorted[j].ItemCode {
			return sorted[i].ItemCode < sorted[j].ItemCode
		}
		return sorted[i].FullQR < sorted[j].FullQR
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]FifoRecommendation, len(sorted))
	for i, r := range sorted {
		out[i] = FifoRecommendation{
			ItemCode:        r.ItemCode,
			FullQR:          r.FullQR,
			ProductionDate:  r.ProductionDate,
			CurrentBoxStock: r.CurrentBoxStock,
		}
	}

	return out
}
