package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cells(values ...string) []Cell {
	out := make([]Cell, len(values))
	for i, v := range values {
		out[i] = Cell{Raw: v}
	}
	return out
}

func TestParseRow_Valid(t *testing.T) {
	row, ok := ParseRow(cells("HOSE-A", "HOSE-A|LOT-1", "12", "03/25/2024 14:30:15", "2024-03-20"), 2, KindStorage)
	require.True(t, ok)
	require.NotNil(t, row)
	assert.True(t, row.IsValid(), "unexpected errors: %v", row.ValidationErrors)

	assert.Equal(t, 2, row.RowNumber)
	assert.Equal(t, KindStorage, row.Kind)
	assert.Equal(t, "HOSE-A", row.ItemCode)
	assert.Equal(t, "HOSE-A|LOT-1", row.FullQR)
	assert.Equal(t, 12, row.BoxCount)
	assert.Equal(t, time.Date(2024, 3, 25, 14, 30, 15, 0, time.UTC), row.OccurredAt)
	require.NotNil(t, row.ProductionDate)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), *row.ProductionDate)
}

func TestParseRow_BlankRowSkipped(t *testing.T) {
	row, ok := ParseRow(cells("", "  ", "", ""), 5, KindStorage)
	assert.False(t, ok)
	assert.Nil(t, row)
}

func TestParseRow_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		cells   []Cell
		wantErr string
	}{
		{
			name:    "missing item code",
			cells:   cells("", "QR-1", "5", "2024-03-25"),
			wantErr: "item code is required",
		},
		{
			name:    "missing scan code",
			cells:   cells("HOSE-A", "", "5", "2024-03-25"),
			wantErr: "scan code is required",
		},
		{
			name:    "missing box count",
			cells:   cells("HOSE-A", "QR-1", "", "2024-03-25"),
			wantErr: "box count is required",
		},
		{
			name:    "missing timestamp",
			cells:   cells("HOSE-A", "QR-1", "5", ""),
			wantErr: "timestamp is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := ParseRow(tt.cells, 1, KindStorage)
			require.True(t, ok)
			assert.False(t, row.IsValid())
			assert.Contains(t, row.ValidationErrors, tt.wantErr)
		})
	}
}

func TestParseRow_BoxCount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		invalid bool
	}{
		{name: "plain number", raw: "12", want: 12},
		{name: "zero is allowed", raw: "0", want: 0},
		{name: "comma as grouping separator", raw: "1,000", want: 1000},
		{name: "dot as grouping separator", raw: "1.000", want: 1000},
		{name: "whitespace padding", raw: " 42 ", want: 42},
		{name: "negative rejected", raw: "-3", invalid: true},
		{name: "not a number", raw: "abc", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := ParseRow(cells("HOSE-A", "QR-1", tt.raw, "2024-03-25"), 1, KindStorage)
			require.True(t, ok)
			if tt.invalid {
				assert.False(t, row.IsValid())
				return
			}
			assert.True(t, row.IsValid(), "unexpected errors: %v", row.ValidationErrors)
			assert.Equal(t, tt.want, row.BoxCount)
		})
	}
}

func TestParseRow_FieldLengthLimits(t *testing.T) {
	longCode := make([]byte, 101)
	for i := range longCode {
		longCode[i] = 'A'
	}

	row, ok := ParseRow(cells(string(longCode), "QR-1", "5", "2024-03-25"), 1, KindStorage)
	require.True(t, ok)
	assert.False(t, row.IsValid())
	assert.Contains(t, row.ValidationErrors, "item code exceeds 100 characters")
}

func TestParseRow_SerialTimestamp(t *testing.T) {
	serial := 45376.5 // 2024-03-25 12:00
	raw := cells("HOSE-A", "QR-1", "5", "45376.5")
	raw[3].Numeric = &serial

	row, ok := ParseRow(raw, 1, KindStorage)
	require.True(t, ok)
	assert.True(t, row.IsValid(), "unexpected errors: %v", row.ValidationErrors)
	assert.Equal(t, time.Date(2024, 3, 25, 12, 0, 0, 0, time.UTC), row.OccurredAt)
}

func TestParseRow_BadTimestampFormat(t *testing.T) {
	row, ok := ParseRow(cells("HOSE-A", "QR-1", "5", "last tuesday"), 1, KindStorage)
	require.True(t, ok)
	assert.False(t, row.IsValid())
	assert.Contains(t, row.ValidationErrors[0], "unrecognized format")
}

func TestParseRow_ProductionDateOptional(t *testing.T) {
	row, ok := ParseRow(cells("HOSE-A", "QR-1", "5", "2024-03-25", ""), 1, KindSupply)
	require.True(t, ok)
	assert.True(t, row.IsValid())
	assert.Nil(t, row.ProductionDate)
}

func TestParseRow_BadProductionDateIsError(t *testing.T) {
	row, ok := ParseRow(cells("HOSE-A", "QR-1", "5", "2024-03-25", "garbage"), 1, KindStorage)
	require.True(t, ok)
	assert.False(t, row.IsValid())
	assert.Contains(t, row.ValidationErrors[0], "production date")
}

func TestParseRow_MultipleErrorsCollected(t *testing.T) {
	row, ok := ParseRow(cells("", "QR-1", "abc", "nonsense"), 1, KindStorage)
	require.True(t, ok)
	assert.Len(t, row.ValidationErrors, 3)
}

func TestParseRow_ShortRowTolerated(t *testing.T) {
	// Trailing empty cells are dropped by the spreadsheet reader.
	row, ok := ParseRow(cells("HOSE-A", "QR-1", "5", "2024-03-25"), 1, KindStorage)
	require.True(t, ok)
	assert.True(t, row.IsValid())
	assert.Nil(t, row.ProductionDate)
}

func TestParseRows_RowNumberingSurvivesBlanks(t *testing.T) {
	raw := [][]Cell{
		cells("HOSE-A", "QR-1", "5", "2024-03-25"),
		cells("", "", "", ""),
		cells("HOSE-B", "QR-2", "bad", "2024-03-25"),
		cells("HOSE-C", "QR-3", "7", "2024-03-25"),
	}

	rows := ParseRows(raw, KindStorage)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].RowNumber)
	assert.Equal(t, 3, rows[1].RowNumber)
	assert.False(t, rows[1].IsValid())
	assert.Equal(t, 4, rows[2].RowNumber)
}
