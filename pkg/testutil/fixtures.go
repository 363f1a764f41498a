package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
)

// FixtureFactory builds repository records with sequenced defaults
// for tests that persist or inspect real rows.
type FixtureFactory struct {
	unitCode string
	sequence int
}

// NewFixtureFactory creates a fixture factory for the given unit
func NewFixtureFactory(unitCode string) *FixtureFactory {
	return &FixtureFactory{unitCode: unitCode}
}

func (f *FixtureFactory) next() int {
	f.sequence++
	return f.sequence
}

// Item creates an item master record. ID and unit code are left empty
// so the repository can assign them on create.
func (f *FixtureFactory) Item() *repository.Item {
	n := f.next()
	desc := fmt.Sprintf("Test item %d", n)
	return &repository.Item{
		ItemCode:    fmt.Sprintf("ITEM-%04d", n),
		Description: &desc,
		UnitsPerBox: 16,
	}
}

// ItemWithLimits creates an item master record with stock thresholds
func (f *FixtureFactory) ItemWithLimits(min, max int) *repository.Item {
	item := f.Item()
	item.MinStock = &min
	item.MaxStock = &max
	return item
}

// InEntry creates a storage ledger entry for the factory's unit
func (f *FixtureFactory) InEntry(itemCode, fullQR string, boxCount int, occurredAt time.Time) *repository.LedgerEntry {
	return &repository.LedgerEntry{
		ID:         uuid.New().String(),
		UnitCode:   f.unitCode,
		Direction:  repository.DirectionIn,
		ItemCode:   itemCode,
		FullQR:     fullQR,
		BoxCount:   boxCount,
		OccurredAt: occurredAt,
	}
}

// OutEntry creates a supply ledger entry drawing from the given
// storage entry, with the back-reference already set
func (f *FixtureFactory) OutEntry(ref *repository.LedgerEntry, boxCount int, occurredAt time.Time) *repository.LedgerEntry {
	return &repository.LedgerEntry{
		ID:         uuid.New().String(),
		UnitCode:   ref.UnitCode,
		Direction:  repository.DirectionOut,
		ItemCode:   ref.ItemCode,
		FullQR:     ref.FullQR,
		BoxCount:   boxCount,
		OccurredAt: occurredAt,
		RefEntryID: &ref.ID,
	}
}
