package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
	"github.com/wiphouse/wiphouse-backend/pkg/config"
	"github.com/wiphouse/wiphouse-backend/pkg/database"
	"github.com/wiphouse/wiphouse-backend/pkg/errors"
	"github.com/wiphouse/wiphouse-backend/pkg/logger"
	"github.com/wiphouse/wiphouse-backend/pkg/scope"
)

// defaultBatchSize backs the chunk loop when the configured batch
// size is unusable.
const defaultBatchSize = 100

// ImportResult summarizes one upload. Success means at least one row
// was persisted; a file where every row failed validation reports
// Success=false with the failures listed in Errors.
type ImportResult struct {
	Success        bool     `json:"success"`
	ProcessedRows  int      `json:"processed_rows"`
	SuccessfulRows int      `json:"successful_rows"`
	ErrorRows      int      `json:"error_rows"`
	Message        string   `json:"message"`
	Errors         []string `json:"errors,omitempty"`
}

// Importer persists parsed upload rows into the stock ledger
type Importer struct {
	db         *database.DB
	ledgerRepo *repository.LedgerRepository
	snapRepo   *repository.SnapshotRepository
	cfg        config.ImportConfig
	logger     *logger.Logger
}

// NewImporter creates a new importer
func NewImporter(db *database.DB, ledgerRepo *repository.LedgerRepository, snapRepo *repository.SnapshotRepository, cfg config.ImportConfig, log *logger.Logger) *Importer {
	return &Importer{
		db:         db,
		ledgerRepo: ledgerRepo,
		snapRepo:   snapRepo,
		cfg:        cfg,
		logger:     log,
	}
}

// Import writes all valid rows to the ledger in one transaction and
// reports the outcome. Invalid rows are skipped and summarized; they
// never block the valid rows around them. A database failure rolls the
// whole upload back so the ledger never holds a partial file.
func (i *Importer) Import(ctx context.Context, rows []*ImportRow) (*ImportResult, error) {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return nil, err
	}

	valid, failed := partition(rows)

	result := &ImportResult{
		ProcessedRows:  len(rows),
		SuccessfulRows: len(valid),
		ErrorRows:      len(failed),
		Errors:         summarize(failed, i.cfg.ErrorSampleSize),
	}

	if len(valid) == 0 {
		result.Success = false
		result.Message = "no importable rows found"
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, i.cfg.InsertTimeout)
	defer cancel()

	// A zero or negative configured batch size would never advance
	// the chunk loop.
	batchSize := i.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	err = i.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(valid); start += batchSize {
			end := start + batchSize
			if end > len(valid) {
				end = len(valid)
			}
			if err := i.insertChunk(ctx, tx, unitCode, valid[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		i.logger.WithError(err).Error().
			Str("unit_code", unitCode).
			Int("rows", len(valid)).
			Msg("Import transaction failed")
		return nil, errors.Database(err)
	}

	result.Success = true
	result.Message = fmt.Sprintf("imported %d of %d rows", len(valid), len(rows))

	i.logger.Info().
		Str("unit_code", unitCode).
		Int("processed", result.ProcessedRows).
		Int("successful", result.SuccessfulRows).
		Int("errors", result.ErrorRows).
		Msg("Import completed")

	return result, nil
}

// insertChunk converts one bounded batch of rows into ledger entries,
// resolves supply back-references, inserts the batch, and folds each
// entry into the snapshot table. All inside the caller's transaction.
func (i *Importer) insertChunk(ctx context.Context, tx *sqlx.Tx, unitCode string, rows []*ImportRow) error {
	entries := make([]*repository.LedgerEntry, 0, len(rows))

	for _, row := range rows {
		entry := &repository.LedgerEntry{
			ID:             uuid.New().String(),
			UnitCode:       unitCode,
			Direction:      repository.DirectionIn,
			ItemCode:       row.ItemCode,
			FullQR:         row.FullQR,
			BoxCount:       row.BoxCount,
			OccurredAt:     row.OccurredAt,
			ProductionDate: row.ProductionDate,
		}

		if row.Kind == KindSupply {
			entry.Direction = repository.DirectionOut

			// Link the consumption back to the storage entry it most
			// likely drew from. No match is fine: the row still counts,
			// it just carries no provenance.
			ref, err := i.ledgerRepo.LatestInByQRTx(ctx, tx, unitCode, row.FullQR)
			if err != nil {
				return err
			}
			if ref != nil {
				entry.RefEntryID = &ref.ID
			}
		}

		entries = append(entries, entry)
	}

	if err := i.ledgerRepo.InsertBatchTx(ctx, tx, entries); err != nil {
		return err
	}

	for _, entry := range entries {
		if err := i.snapRepo.ApplyEntryTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	return nil
}

func partition(rows []*ImportRow) (valid, failed []*ImportRow) {
	for _, row := range rows {
		if row.IsValid() {
			valid = append(valid, row)
		} else {
			failed = append(failed, row)
		}
	}
	return valid, failed
}

// summarize renders a bounded sample of row failures for the import
// report. Uploads with thousands of bad rows would otherwise produce
// unusable responses.
func summarize(failed []*ImportRow, sampleSize int) []string {
	if len(failed) == 0 {
		return nil
	}

	summaries := make([]string, 0, sampleSize+1)
	for idx, row := range failed {
		if idx >= sampleSize {
			summaries = append(summaries,
				fmt.Sprintf("... and %d more rows with errors", len(failed)-sampleSize))
			break
		}
		summaries = append(summaries, fmt.Sprintf(
			"row %d: %s (%s)",
			row.RowNumber, strings.Join(row.ValidationErrors, "; "), row.Snippet(),
		))
	}
	return summaries
}
