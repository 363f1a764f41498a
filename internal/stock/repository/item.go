package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wiphouse/wiphouse-backend/pkg/database"
	"github.com/wiphouse/wiphouse-backend/pkg/errors"
	"github.com/wiphouse/wiphouse-backend/pkg/scope"
)

// Item is the master record for one stock-keeping unit within a
// business unit. The three thresholds are optional; a missing
// threshold simply disables the corresponding classification rule.
type Item struct {
	ID               string     `db:"id" json:"id"`
	UnitCode         string     `db:"unit_code" json:"unit_code"`
	ItemCode         string     `db:"item_code" json:"item_code"`
	Description      *string    `db:"description" json:"description,omitempty"`
	UnitsPerBox      int        `db:"units_per_box" json:"units_per_box"`
	MinStock         *int       `db:"min_stock" json:"min_stock,omitempty"`
	MaxStock         *int       `db:"max_stock" json:"max_stock,omitempty"`
	ExpiryWindowDays *int       `db:"expiry_window_days" json:"expiry_window_days,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at" json:"-"`
}

// ItemRepository handles item master persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, unit_code, item_code, description, units_per_box,
	       min_stock, max_stock, expiry_window_days, created_at, updated_at`

// Create creates a new item master record in the unit from context
func (r *ItemRepository) Create(ctx context.Context, item *Item) error {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return err // Fail-fast if unit scope missing
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.UnitCode = unitCode

	query := `
		INSERT INTO items (
			id, unit_code, item_code, description, units_per_box,
			min_stock, max_stock, expiry_window_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowxContext(ctx, query,
		item.ID, item.UnitCode, item.ItemCode, item.Description, item.UnitsPerBox,
		item.MinStock, item.MaxStock, item.ExpiryWindowDays,
	).Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets an item by ID within the unit from context
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return nil, err
	}

	var item Item
	query := `
		SELECT ` + itemColumns + `
		FROM items WHERE id = $1 AND unit_code = $2 AND deleted_at IS NULL
	`
	err = r.db.GetContext(ctx, &item, query, id, unitCode)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("item")
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// GetByItemCode gets an item by its business item code
func (r *ItemRepository) GetByItemCode(ctx context.Context, itemCode string) (*Item, error) {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return nil, err
	}

	var item Item
	query := `
		SELECT ` + itemColumns + `
		FROM items WHERE item_code = $1 AND unit_code = $2 AND deleted_at IS NULL
	`
	err = r.db.GetContext(ctx, &item, query, itemCode, unitCode)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("item")
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// List lists items for the unit from context with pagination
func (r *ItemRepository) List(ctx context.Context, page, perPage int) ([]*Item, int64, error) {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM items WHERE unit_code = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, unitCode); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	var items []*Item
	query := `
		SELECT ` + itemColumns + `
		FROM items WHERE unit_code = $1 AND deleted_at IS NULL
		ORDER BY item_code
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &items, query, unitCode, perPage, offset); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// GetAll gets every item for the unit from context, keyed use at the
// classification call site
func (r *ItemRepository) GetAll(ctx context.Context) ([]*Item, error) {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return nil, err
	}

	var items []*Item
	query := `
		SELECT ` + itemColumns + `
		FROM items WHERE unit_code = $1 AND deleted_at IS NULL
		ORDER BY item_code
	`
	if err := r.db.SelectContext(ctx, &items, query, unitCode); err != nil {
		return nil, err
	}

	return items, nil
}

// Update updates an item's description and thresholds
func (r *ItemRepository) Update(ctx context.Context, item *Item) error {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE items SET
			description = $3, units_per_box = $4, min_stock = $5,
			max_stock = $6, expiry_window_days = $7, updated_at = NOW()
		WHERE id = $1 AND unit_code = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		item.ID, unitCode, item.Description, item.UnitsPerBox,
		item.MinStock, item.MaxStock, item.ExpiryWindowDays,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}

// SoftDelete soft deletes an item. Ledger entries referencing the item
// code are untouched; the master simply stops joining against them.
func (r *ItemRepository) SoftDelete(ctx context.Context, id string) error {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE items SET deleted_at = NOW() WHERE id = $1 AND unit_code = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, unitCode)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}
