package importer

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wiphouse/wiphouse-backend/pkg/errors"
)

// Accepted upload extensions
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// ReadWorkbook validates and parses an uploaded spreadsheet into raw
// rows ready for ParseRow. It reads the first sheet only and skips the
// header row; returned rows are numbered 1-based from the first data
// row so error reports line up with what users see under the header.
func ReadWorkbook(filename string, data []byte, maxBytes int64) ([][]Cell, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, errors.BadRequest("unsupported file type, expected .xlsx or .xlsm")
	}
	if len(data) == 0 {
		return nil, errors.BadRequest("uploaded file is empty")
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.BadRequest("uploaded file exceeds the size limit")
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.BadRequest("file could not be read as a spreadsheet")
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.BadRequest("spreadsheet has no sheets")
	}
	sheet := sheets[0]

	raw, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.BadRequest("sheet could not be read")
	}
	if len(raw) <= 1 {
		return nil, errors.BadRequest("sheet has no data rows")
	}

	rows := make([][]Cell, 0, len(raw)-1)
	for _, rawRow := range raw[1:] { // skip header
		cells := make([]Cell, len(rawRow))
		for c, value := range rawRow {
			cells[c] = Cell{Raw: value}
			// With RawCellValue, date cells arrive as serial numbers in
			// text form. Surface the numeric reading so the row parser
			// can treat them as spreadsheet dates.
			if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				v := f
				cells[c].Numeric = &v
			}
		}
		rows = append(rows, cells)
	}

	return rows, nil
}

// ParseRows runs ParseRow over every raw row, dropping blank spacer
// rows while preserving original row numbering for the rest.
func ParseRows(raw [][]Cell, kind RowKind) []*ImportRow {
	rows := make([]*ImportRow, 0, len(raw))
	for idx, cells := range raw {
		row, ok := ParseRow(cells, idx+1, kind)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
