package pricelist

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/takeoff-group/recon-cli/internal/model"
)

// XLSXLoader reads the price list from an Excel workbook. The first row of
// the selected sheet is the header.
type XLSXLoader struct {
	Path       string
	SheetIndex int
	SheetName  string // overrides SheetIndex when set
}

// Load implements Loader.
func (l *XLSXLoader) Load(_ context.Context) ([]model.PriceListRow, error) {
	f, err := xlsx.OpenFile(l.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "pricelist: open %s", l.Path)
	}

	sheet, err := l.sheet(f)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("pricelist: sheet in %s is empty", l.Path)
	}

	header := rowToStrings(sheet.Rows[0])
	data := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		data = append(data, rowToStrings(row))
	}
	return rowsFromTable(header, data), nil
}

func (l *XLSXLoader) sheet(f *xlsx.File) (*xlsx.Sheet, error) {
	if l.SheetName != "" {
		sheet, ok := f.Sheet[l.SheetName]
		if !ok {
			return nil, eris.Errorf("pricelist: sheet %q not found in %s", l.SheetName, l.Path)
		}
		return sheet, nil
	}
	if l.SheetIndex < 0 || l.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("pricelist: sheet index %d out of range (file has %d sheets)", l.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[l.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
