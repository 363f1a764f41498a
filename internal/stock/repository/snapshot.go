package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/wiphouse/wiphouse-backend/pkg/database"
	"github.com/wiphouse/wiphouse-backend/pkg/scope"
)

// StockSnapshotRow is the running current stock for one physical lot:
// one row per (item code, scan code) pair. LastUpdated is free text
// for historical reasons; readers go through pkg/timeparse. ExpiryFlag
// is an optional marker written by the upstream scanning system on the
// record it last touched.
type StockSnapshotRow struct {
	UnitCode        string  `db:"unit_code" json:"unit_code"`
	ItemCode        string  `db:"item_code" json:"item_code"`
	FullQR          string  `db:"full_qr" json:"full_qr"`
	CurrentBoxStock int     `db:"current_box_stock" json:"current_box_stock"`
	LastUpdated     string  `db:"last_updated" json:"last_updated"`
	ExpiryFlag      *string `db:"expiry_flag" json:"expiry_flag,omitempty"`
}

// Upstream expiry flag values
const (
	FlagExpired     = "expired"
	FlagNearExpired = "near_expired"
)

// snapshotTimeLayout is how this service renders timestamps into the
// free-text last_updated column. Legacy writers used other formats;
// the aggregator tolerates all of them on the way back out.
const snapshotTimeLayout = "2006-01-02 15:04:05"

// SnapshotRepository handles the per-lot stock snapshot table
type SnapshotRepository struct {
	db *database.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *database.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// ListByScope returns every snapshot row for the unit in context.
// This is the bulk-read boundary feeding the aggregator.
func (r *SnapshotRepository) ListByScope(ctx context.Context) ([]StockSnapshotRow, error) {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return nil, err
	}

	var rows []StockSnapshotRow
	query := `
		SELECT unit_code, item_code, full_qr, current_box_stock, last_updated, expiry_flag
		FROM stock_snapshots
		WHERE unit_code = $1
	`
	if err := r.db.SelectContext(ctx, &rows, query, unitCode); err != nil {
		return nil, err
	}

	return rows, nil
}

// ApplyEntryTx folds one ledger entry into the snapshot table inside
// the caller's transaction: IN entries add to the lot's running
// count, OUT entries subtract. Runs in the same transaction as the
// ledger insert so ledger and snapshot can never diverge mid-import.
func (r *SnapshotRepository) ApplyEntryTx(ctx context.Context, tx *sqlx.Tx, entry *LedgerEntry) error {
	delta := entry.BoxCount
	if entry.Direction == DirectionOut {
		delta = -delta
	}

	query := `
		INSERT INTO stock_snapshots (unit_code, item_code, full_qr, current_box_stock, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (unit_code, item_code, full_qr)
		DO UPDATE SET
			current_box_stock = stock_snapshots.current_box_stock + EXCLUDED.current_box_stock,
			last_updated = EXCLUDED.last_updated
	`

	_, err := tx.ExecContext(ctx, query,
		entry.UnitCode, entry.ItemCode, entry.FullQR,
		delta, entry.OccurredAt.Format(snapshotTimeLayout),
	)
	return err
}
