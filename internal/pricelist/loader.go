// Package pricelist loads the reference price list as an ordered sequence
// of opaque rows. Column names come from the file header; no schema is
// assumed beyond what the pricing engine sniffs out of the names.
package pricelist

import (
	"context"

	"github.com/takeoff-group/recon-cli/internal/model"
)

// Loader supplies the reference price list to the pricing engine. Rows are
// returned in file order — the engine's bounds invariant is defined against
// that order.
type Loader interface {
	Load(ctx context.Context) ([]model.PriceListRow, error)
}

// rowsFromTable converts header + data rows into PriceListRows. Cells
// beyond the header width are dropped; missing trailing cells are absent
// keys, not empty strings. Numeric-looking cells stay strings — the oracle
// and the sniffing heuristics both work on text.
func rowsFromTable(header []string, rows [][]string) []model.PriceListRow {
	out := make([]model.PriceListRow, 0, len(rows))
	for _, cells := range rows {
		row := make(model.PriceListRow, len(header))
		for i, name := range header {
			if name == "" || i >= len(cells) {
				continue
			}
			if cells[i] == "" {
				continue
			}
			row[name] = cells[i]
		}
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out
}
