package repository_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
	"github.com/wiphouse/wiphouse-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	flag.Parse()
	ctx := context.Background()

	if !testing.Short() {
		var err error
		suite, err = testutil.NewIntegrationSuite(ctx)
		if err != nil {
			log.Fatalf("failed to create integration suite: %v", err)
		}
	}

	code := m.Run()
	testutil.TerminateContainer(ctx)
	os.Exit(code)
}

func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
}

func insertEntries(t *testing.T, ctx context.Context, entries ...*repository.LedgerEntry) {
	t.Helper()
	ledgerRepo := repository.NewLedgerRepository(suite.DB)
	err := suite.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		return ledgerRepo.InsertBatchTx(ctx, tx, entries)
	})
	require.NoError(t, err)
}

func TestLedgerInsertAndLatestLookup(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	suite.Reset(t, ctx)

	fx := testutil.NewFixtureFactory("raw-hose")
	occurred := time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC)
	older := fx.InEntry("HOSE-A", "QR-1", 10, occurred)
	newer := fx.InEntry("HOSE-A", "QR-1", 5, occurred.Add(time.Hour))

	insertEntries(t, ctx, older)
	time.Sleep(10 * time.Millisecond) // created_at ordering
	insertEntries(t, ctx, newer)

	ledgerRepo := repository.NewLedgerRepository(suite.DB)
	err := suite.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		found, err := ledgerRepo.LatestInByQRTx(ctx, tx, "raw-hose", "QR-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, newer.ID, found.ID)

		// No match returns nil without error
		missing, err := ledgerRepo.LatestInByQRTx(ctx, tx, "raw-hose", "QR-UNSEEN")
		require.NoError(t, err)
		assert.Nil(t, missing)

		// Other units never see this entry
		other, err := ledgerRepo.LatestInByQRTx(ctx, tx, "molded", "QR-1")
		require.NoError(t, err)
		assert.Nil(t, other)
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerListInStock_SubtractsReferencedOuts(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	suite.Reset(t, ctx)

	fx := testutil.NewFixtureFactory("raw-hose")
	prod := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	in := fx.InEntry("HOSE-A", "QR-1", 10, time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC))
	in.ProductionDate = &prod
	out := fx.OutEntry(in, 4, time.Date(2024, 3, 26, 10, 0, 0, 0, time.UTC))

	drained := fx.InEntry("HOSE-B", "QR-2", 3, time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC))
	drainedOut := fx.OutEntry(drained, 3, time.Date(2024, 3, 26, 10, 0, 0, 0, time.UTC))

	insertEntries(t, ctx, in, drained)
	insertEntries(t, ctx, out, drainedOut)

	ledgerRepo := repository.NewLedgerRepository(suite.DB)
	rows, err := ledgerRepo.ListInStock(suite.UnitContext("raw-hose"), "")
	require.NoError(t, err)

	// QR-2 is fully consumed and must not appear
	require.Len(t, rows, 1)
	assert.Equal(t, "QR-1", rows[0].FullQR)
	assert.Equal(t, 6, rows[0].CurrentBoxStock)
	require.NotNil(t, rows[0].ProductionDate)
	assert.True(t, prod.Equal(*rows[0].ProductionDate))
}

func TestLedgerListInStock_ItemCodeFilter(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	suite.Reset(t, ctx)

	fx := testutil.NewFixtureFactory("raw-hose")
	now := time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC)
	insertEntries(t, ctx,
		fx.InEntry("HOSE-A", "QR-1", 5, now),
		fx.InEntry("TUBE-X", "QR-2", 5, now),
	)

	ledgerRepo := repository.NewLedgerRepository(suite.DB)
	rows, err := ledgerRepo.ListInStock(suite.UnitContext("raw-hose"), "hose")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "HOSE-A", rows[0].ItemCode)
}

func TestSnapshotApplyEntry_Accumulates(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	suite.Reset(t, ctx)

	snapRepo := repository.NewSnapshotRepository(suite.DB)
	fx := testutil.NewFixtureFactory("raw-hose")
	now := time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC)

	in := fx.InEntry("HOSE-A", "QR-1", 10, now)
	out := fx.OutEntry(in, 4, now.Add(time.Hour))

	err := suite.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := snapRepo.ApplyEntryTx(ctx, tx, in); err != nil {
			return err
		}
		return snapRepo.ApplyEntryTx(ctx, tx, out)
	})
	require.NoError(t, err)

	rows, err := snapRepo.ListByScope(suite.UnitContext("raw-hose"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 6, rows[0].CurrentBoxStock)
	assert.Equal(t, "2024-03-25 11:00:00", rows[0].LastUpdated)

	// Other units see nothing
	other, err := snapRepo.ListByScope(suite.UnitContext("molded"))
	require.NoError(t, err)
	assert.Empty(t, other)
}
