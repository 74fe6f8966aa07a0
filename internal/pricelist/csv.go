package pricelist

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/takeoff-group/recon-cli/internal/model"
)

// CSVLoader reads the price list from a CSV file whose first row is the
// header.
type CSVLoader struct {
	Path string
}

// Load implements Loader.
func (l *CSVLoader) Load(_ context.Context) ([]model.PriceListRow, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "pricelist: open %s", l.Path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, eris.Errorf("pricelist: %s is empty", l.Path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "pricelist: read header %s", l.Path)
	}

	var data [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "pricelist: read %s", l.Path)
		}
		data = append(data, record)
	}
	return rowsFromTable(header, data), nil
}
