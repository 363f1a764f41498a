package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wiphouse/wiphouse-backend/pkg/timeparse"
)

// RowKind says which ledger direction an upload feeds
type RowKind string

const (
	KindStorage RowKind = "storage" // IN entries
	KindSupply  RowKind = "supply"  // OUT entries
)

// Column positions in the upload sheets. Both storage and supply
// sheets share the same layout.
const (
	colItemCode = iota
	colFullQR
	colBoxCount
	colTimestamp
	colProductionDate
)

// Field length limits mirror the store's column widths
const (
	maxItemCodeLen = 100
	maxFullQRLen   = 300
)

// Cell is one spreadsheet cell as delivered by the intake layer. Raw
// always holds the textual value; Numeric is set when the underlying
// cell is natively numeric, which is how spreadsheet date cells
// surface (as serial numbers rather than text).
type Cell struct {
	Raw     string
	Numeric *float64
}

// ImportRow is one parsed upload row. ValidationErrors empty means the
// row is importable; a populated list is reported, never persisted.
type ImportRow struct {
	RowNumber        int
	Kind             RowKind
	ItemCode         string
	FullQR           string
	BoxCount         int
	OccurredAt       time.Time
	ProductionDate   *time.Time
	ValidationErrors []string
}

// IsValid reports whether the row passed all field validations
func (r *ImportRow) IsValid() bool {
	return len(r.ValidationErrors) == 0
}

// Snippet returns a short rendering of the row's key fields for error
// reports.
func (r *ImportRow) Snippet() string {
	return fmt.Sprintf("%s / %s", truncate(r.ItemCode, 30), truncate(r.FullQR, 30))
}

// ParseRow turns one raw row into an ImportRow. It never fails: every
// anomaly, including a panic while handling the row, becomes a
// validation error on that row so one bad row cannot abort the batch.
//
// The second return value is false for blank spacer rows (all required
// cells empty); such rows are skipped entirely but still consume a row
// number at the call site.
func ParseRow(cells []Cell, rowNumber int, kind RowKind) (row *ImportRow, ok bool) {
	if isBlankRow(cells) {
		return nil, false
	}

	row = &ImportRow{RowNumber: rowNumber, Kind: kind}

	defer func() {
		if rec := recover(); rec != nil {
			row.ValidationErrors = append(row.ValidationErrors,
				fmt.Sprintf("unexpected error processing row: %v", rec))
			ok = true
		}
	}()

	row.ItemCode = parseRequiredText(row, cells, colItemCode, "item code", maxItemCodeLen)
	row.FullQR = parseRequiredText(row, cells, colFullQR, "scan code", maxFullQRLen)
	row.BoxCount = parseBoxCount(row, cells)
	row.OccurredAt = parseTimestamp(row, cells)
	row.ProductionDate = parseProductionDate(row, cells)

	return row, true
}

// isBlankRow reports whether all required cells are empty. Spacer
// rows like this are common at the bottom of hand-edited sheets.
func isBlankRow(cells []Cell) bool {
	for _, col := range []int{colItemCode, colFullQR, colBoxCount, colTimestamp} {
		if strings.TrimSpace(rawCell(cells, col)) != "" {
			return false
		}
	}
	return true
}

func rawCell(cells []Cell, col int) string {
	if col >= len(cells) {
		return ""
	}
	return cells[col].Raw
}

func numericCell(cells []Cell, col int) *float64 {
	if col >= len(cells) {
		return nil
	}
	return cells[col].Numeric
}

func parseRequiredText(row *ImportRow, cells []Cell, col int, field string, maxLen int) string {
	value := strings.TrimSpace(rawCell(cells, col))
	if value == "" {
		row.ValidationErrors = append(row.ValidationErrors, field+" is required")
		return ""
	}
	if len(value) > maxLen {
		row.ValidationErrors = append(row.ValidationErrors,
			fmt.Sprintf("%s exceeds %d characters", field, maxLen))
		return ""
	}
	return value
}

// parseBoxCount parses the box count after stripping grouping
// separators. Both "," and "." appear as thousands separators in the
// source sheets; box counts are whole containers, never fractions.
func parseBoxCount(row *ImportRow, cells []Cell) int {
	raw := strings.TrimSpace(rawCell(cells, colBoxCount))
	if raw == "" {
		row.ValidationErrors = append(row.ValidationErrors, "box count is required")
		return 0
	}

	cleaned := strings.NewReplacer(",", "", ".", "").Replace(raw)
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		row.ValidationErrors = append(row.ValidationErrors,
			fmt.Sprintf("box count %q is not a number", raw))
		return 0
	}
	if n < 0 {
		row.ValidationErrors = append(row.ValidationErrors, "box count must not be negative")
		return 0
	}

	return n
}

// parseCellTime interprets a cell as a timestamp: numeric cells are
// spreadsheet date serials, text cells go through the shared tolerant
// parser.
func parseCellTime(cells []Cell, col int) (time.Time, bool) {
	if serial := numericCell(cells, col); serial != nil {
		return timeparse.ParseSerial(*serial), true
	}
	return timeparse.Parse(rawCell(cells, col))
}

func parseTimestamp(row *ImportRow, cells []Cell) time.Time {
	raw := strings.TrimSpace(rawCell(cells, colTimestamp))
	if raw == "" {
		row.ValidationErrors = append(row.ValidationErrors, "timestamp is required")
		return time.Time{}
	}

	ts, parsed := parseCellTime(cells, colTimestamp)
	if !parsed {
		row.ValidationErrors = append(row.ValidationErrors,
			fmt.Sprintf("timestamp %q has an unrecognized format", raw))
		return time.Time{}
	}

	return ts
}

func parseProductionDate(row *ImportRow, cells []Cell) *time.Time {
	raw := strings.TrimSpace(rawCell(cells, colProductionDate))
	if raw == "" {
		return nil // optional
	}

	ts, parsed := parseCellTime(cells, colProductionDate)
	if !parsed {
		row.ValidationErrors = append(row.ValidationErrors,
			fmt.Sprintf("production date %q has an unrecognized format", raw))
		return nil
	}

	return &ts
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
