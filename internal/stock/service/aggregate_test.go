package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
	"github.com/wiphouse/wiphouse-backend/internal/stock/service"
)

func snap(itemCode, fullQR string, stock int, lastUpdated string) repository.StockSnapshotRow {
	return repository.StockSnapshotRow{
		UnitCode:        "raw-hose",
		ItemCode:        itemCode,
		FullQR:          fullQR,
		CurrentBoxStock: stock,
		LastUpdated:     lastUpdated,
	}
}

func TestAggregateSnapshots_SumsAllRowsPerItemCode(t *testing.T) {
	rows := []repository.StockSnapshotRow{
		snap("HOSE-A", "HOSE-A|LOT-1", 5, "2024-03-01 10:00:00"),
		snap("HOSE-A", "HOSE-A|LOT-2", 3, "2024-03-02 10:00:00"),
		snap("HOSE-B", "HOSE-B|LOT-1", 7, "2024-03-01 10:00:00"),
	}

	got := service.AggregateSnapshots(rows)
	require.Len(t, got, 2)

	assert.Equal(t, "HOSE-A", got[0].ItemCode)
	assert.Equal(t, 8, got[0].TotalBoxStock)
	assert.Equal(t, 2, got[0].RowCount)
	assert.Equal(t, "HOSE-B", got[1].ItemCode)
	assert.Equal(t, 7, got[1].TotalBoxStock)
}

func TestAggregateSnapshots_DuplicateScanCodesBothCount(t *testing.T) {
	// Two rows with the same scan code are two physical contributions.
	// Deduplicating them would undercount stock.
	rows := []repository.StockSnapshotRow{
		snap("HOSE-A", "HOSE-A|LOT-1", 5, "2024-03-01 10:00:00"),
		snap("HOSE-A", "HOSE-A|LOT-1", 5, "2024-03-01 10:00:00"),
	}

	got := service.AggregateSnapshots(rows)
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].TotalBoxStock)
	assert.Equal(t, 2, got[0].RowCount)
}

func TestAggregateSnapshots_OrderInsensitive(t *testing.T) {
	flag := repository.FlagExpired
	rows := []repository.StockSnapshotRow{
		snap("HOSE-A", "HOSE-A|LOT-1", 5, "2024-03-01 10:00:00"),
		snap("HOSE-A", "HOSE-A|LOT-2", 3, "2024-03-05 10:00:00"),
		snap("HOSE-B", "HOSE-B|LOT-1", 7, "garbage"),
	}
	rows[1].ExpiryFlag = &flag

	forward := service.AggregateSnapshots(rows)
	reversed := service.AggregateSnapshots([]repository.StockSnapshotRow{rows[2], rows[1], rows[0]})

	assert.Equal(t, forward, reversed)
}

func TestAggregateSnapshots_LastUpdatedIsMaxParseable(t *testing.T) {
	rows := []repository.StockSnapshotRow{
		snap("HOSE-A", "HOSE-A|LOT-1", 1, "2024-03-01 10:00:00"),
		snap("HOSE-A", "HOSE-A|LOT-2", 1, "03/25/2024 14:30:15"),
		snap("HOSE-A", "HOSE-A|LOT-3", 1, "not a timestamp"),
	}

	got := service.AggregateSnapshots(rows)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 3, 25, 14, 30, 15, 0, time.UTC), got[0].LastUpdated)
}

func TestAggregateSnapshots_NoParseableTimestampIsZeroTime(t *testing.T) {
	rows := []repository.StockSnapshotRow{
		snap("HOSE-A", "HOSE-A|LOT-1", 4, ""),
		snap("HOSE-A", "HOSE-A|LOT-2", 2, "???"),
	}

	got := service.AggregateSnapshots(rows)
	require.Len(t, got, 1)
	assert.True(t, got[0].LastUpdated.IsZero())
	assert.Equal(t, 6, got[0].TotalBoxStock)
}

func TestAggregateSnapshots_EmptyItemCodeDiscarded(t *testing.T) {
	rows := []repository.StockSnapshotRow{
		snap("", "ORPHAN|LOT-1", 99, "2024-03-01 10:00:00"),
		snap("HOSE-A", "HOSE-A|LOT-1", 5, "2024-03-01 10:00:00"),
	}

	got := service.AggregateSnapshots(rows)
	require.Len(t, got, 1)
	assert.Equal(t, "HOSE-A", got[0].ItemCode)
}

func TestAggregateSnapshots_FlagFollowsMostRecentRow(t *testing.T) {
	flag := repository.FlagNearExpired
	older := snap("HOSE-A", "HOSE-A|LOT-1", 5, "2024-03-01 10:00:00")
	older.ExpiryFlag = &flag
	newer := snap("HOSE-A", "HOSE-A|LOT-2", 3, "2024-03-10 10:00:00")

	got := service.AggregateSnapshots([]repository.StockSnapshotRow{older, newer})
	require.Len(t, got, 1)
	// The newest row carries no flag, so the aggregate carries none.
	assert.Nil(t, got[0].LatestExpiryFlag)

	expired := repository.FlagExpired
	newer.ExpiryFlag = &expired
	got = service.AggregateSnapshots([]repository.StockSnapshotRow{older, newer})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].LatestExpiryFlag)
	assert.Equal(t, repository.FlagExpired, *got[0].LatestExpiryFlag)
}

func TestAggregateSnapshots_Empty(t *testing.T) {
	got := service.AggregateSnapshots(nil)
	assert.Empty(t, got)
}
