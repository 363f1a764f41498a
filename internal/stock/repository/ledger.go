package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wiphouse/wiphouse-backend/pkg/database"
	"github.com/wiphouse/wiphouse-backend/pkg/scope"
)

// Ledger entry directions
const (
	DirectionIn  = "in"  // storage / receiving
	DirectionOut = "out" // supply / consumption
)

// LedgerEntry is one immutable fact in the append-only stock ledger.
// OUT entries may carry RefEntryID pointing at the IN entry they were
// matched against; the reference is set when the OUT entry is created
// and never mutated afterwards.
type LedgerEntry struct {
	ID             string     `db:"id" json:"id"`
	UnitCode       string     `db:"unit_code" json:"unit_code"`
	Direction      string     `db:"direction" json:"direction"`
	ItemCode       string     `db:"item_code" json:"item_code"`
	FullQR         string     `db:"full_qr" json:"full_qr"`
	BoxCount       int        `db:"box_count" json:"box_count"`
	UnitCount      *int       `db:"unit_count" json:"unit_count,omitempty"`
	OccurredAt     time.Time  `db:"occurred_at" json:"occurred_at"`
	ProductionDate *time.Time `db:"production_date" json:"production_date,omitempty"`
	RefEntryID     *string    `db:"ref_entry_id" json:"ref_entry_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// InStockRow is one storage entry with remaining positive stock,
// the input to the FIFO selector.
type InStockRow struct {
	ItemCode        string     `db:"item_code" json:"item_code"`
	FullQR          string     `db:"full_qr" json:"full_qr"`
	ProductionDate  *time.Time `db:"production_date" json:"production_date,omitempty"`
	CurrentBoxStock int        `db:"current_box_stock" json:"current_box_stock"`
}

// LedgerRepository handles the append-only stock ledger
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// InsertBatchTx inserts a batch of ledger entries inside the given
// transaction with a single multi-row statement. The caller owns the
// transaction; the importer uses this to write bounded batches while
// keeping the whole upload atomic.
func (r *LedgerRepository) InsertBatchTx(ctx context.Context, tx *sqlx.Tx, entries []*LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, e := range entries {
		base := i * 9
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args,
			e.ID, e.UnitCode, e.Direction, e.ItemCode, e.FullQR,
			e.BoxCount, e.UnitCount, e.OccurredAt, e.ProductionDate,
		)
	}

	query := `
		INSERT INTO stock_entries (
			id, unit_code, direction, item_code, full_qr,
			box_count, unit_count, occurred_at, production_date
		) VALUES ` + strings.Join(placeholders, ", ")

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	// Back-references are written separately: the multi-row insert
	// above keeps entry values positional, while only OUT entries
	// carry a reference.
	for _, e := range entries {
		if e.RefEntryID == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE stock_entries SET ref_entry_id = $2 WHERE id = $1`,
			e.ID, *e.RefEntryID,
		); err != nil {
			return err
		}
	}

	return nil
}

// LatestInByQRTx finds the most recently created IN entry with the
// given scan code, inside the caller's transaction. Returns nil
// without error when there is no match: a supply row with no matching
// storage entry is still imported, just without provenance.
func (r *LedgerRepository) LatestInByQRTx(ctx context.Context, tx *sqlx.Tx, unitCode, fullQR string) (*LedgerEntry, error) {
	var entry LedgerEntry
	query := `
		SELECT id, unit_code, direction, item_code, full_qr, box_count,
		       unit_count, occurred_at, production_date, ref_entry_id, created_at
		FROM stock_entries
		WHERE unit_code = $1 AND full_qr = $2 AND direction = 'in'
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := tx.GetContext(ctx, &entry, query, unitCode, fullQR)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListInStock returns storage entries with remaining positive stock
// for the unit in context, optionally filtered by an item-code
// substring. Remaining stock is the entry's box count minus all OUT
// entries referencing it. Read-only.
func (r *LedgerRepository) ListInStock(ctx context.Context, itemCodeFilter string) ([]InStockRow, error) {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT e.item_code, e.full_qr, e.production_date,
		       e.box_count - COALESCE(SUM(o.box_count), 0) AS current_box_stock
		FROM stock_entries e
		LEFT JOIN stock_entries o ON o.ref_entry_id = e.id AND o.direction = 'out'
		WHERE e.unit_code = $1 AND e.direction = 'in'
	`
	args := []interface{}{unitCode}

	if itemCodeFilter != "" {
		query += ` AND e.item_code ILIKE $2`
		args = append(args, "%"+itemCodeFilter+"%")
	}

	query += `
		GROUP BY e.id, e.item_code, e.full_qr, e.production_date, e.box_count
		HAVING e.box_count - COALESCE(SUM(o.box_count), 0) > 0
	`

	var rows []InStockRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return rows, nil
}
