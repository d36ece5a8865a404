// Package fetcher loads interview workbooks from disk. A workbook is a
// header row of column names (participant id plus one column per question
// key) followed by one row per participant.
package fetcher

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/usercue/thematic-cli/internal/extract"
)

// Workbook is a parsed spreadsheet: the header row and the data rows.
type Workbook struct {
	Header []string
	Table  [][]string
}

// Load reads a workbook from path, dispatching on the file extension.
// XLSX and CSV are supported.
func Load(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadXLSX(path)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, eris.Errorf("fetcher: unsupported workbook format: %s", path)
	}
}

// Rows converts the workbook into keyed rows for response extraction.
func (w *Workbook) Rows() []extract.Row {
	return extract.RowsFromTable(w.Header, w.Table)
}

func loadXLSX(path string) (*Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("fetcher: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	wb := &Workbook{}
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			wb.Header = cells
			continue
		}
		wb.Table = append(wb.Table, cells)
	}
	if len(wb.Header) == 0 {
		return nil, eris.Errorf("fetcher: xlsx %s has no header row", path)
	}
	return wb, nil
}

func loadCSV(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open csv %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse csv %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("fetcher: csv %s is empty", path)
	}
	return &Workbook{Header: records[0], Table: records[1:]}, nil
}
