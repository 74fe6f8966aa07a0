// Package report renders reconciliation results as terminal tables.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/takeoff-group/recon-cli/internal/model"
)

const maxDescriptionWidth = 60

// WriteComparison renders comparison rows followed by a per-status tally.
func WriteComparison(w io.Writer, rows []model.ComparisonRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Drawing Item", "BOQ Item", "Qty (Dwg)", "Qty (BOQ)", "Status", "Note"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: maxDescriptionWidth},
		{Number: 3, WidthMax: maxDescriptionWidth},
		{Number: 7, WidthMax: 40},
	})

	for i, row := range rows {
		t.AppendRow(table.Row{
			i + 1,
			itemDescription(row.DrawingItem),
			itemDescription(row.BOQItem),
			itemQuantity(row.DrawingItem),
			itemQuantity(row.BOQItem),
			statusCell(row.Status),
			row.Note,
		})
	}
	t.Render()

	writeSummary(w, model.Summarize(rows))
}

func writeSummary(w io.Writer, s model.ComparisonSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Status", "Count"})
	for _, status := range model.AllComparisonStatuses() {
		t.AppendRow(table.Row{string(status), s.Counts[status]})
	}
	t.AppendFooter(table.Row{"total", s.Total})
	t.Render()
}

// WriteMappings renders price-mapping candidates grouped by item index.
func WriteMappings(w io.Writer, items []model.ExtractedItem, mappings []model.PriceMapping) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Item", "Description", "Price Row", "Unit Price", "Unit Manhour", "Reason"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: maxDescriptionWidth},
		{Number: 6, WidthMax: 40},
	})

	for _, m := range mappings {
		desc := ""
		if m.ItemIndex >= 0 && m.ItemIndex < len(items) {
			desc = items[m.ItemIndex].DisplayDescription()
		}
		t.AppendRow(table.Row{m.ItemIndex, desc, m.PriceListIndex, m.UnitPrice, m.UnitManhour, m.MatchReason})
	}
	t.Render()

	fmt.Fprintf(w, "%d candidate mapping(s) for %d item(s)\n", len(mappings), len(items))
}

// WriteItems renders extracted items for the extract command.
func WriteItems(w io.Writer, items []model.ExtractedItem) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Description", "Size", "Qty", "Unit", "Remarks"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: maxDescriptionWidth},
		{Number: 6, WidthMax: 40},
	})

	for i, item := range items {
		t.AppendRow(table.Row{
			i,
			item.DisplayDescription(),
			item.Size,
			item.Quantity,
			item.Unit,
			item.Remarks,
		})
	}
	t.Render()
}

func itemDescription(item *model.ExtractedItem) string {
	if item == nil {
		return "-"
	}
	return item.DisplayDescription()
}

func itemQuantity(item *model.ExtractedItem) string {
	if item == nil || item.Quantity == "" {
		return "-"
	}
	q := item.Quantity
	if item.Unit != "" {
		q += " " + item.Unit
	}
	return q
}

func statusCell(status model.ComparisonStatus) string {
	switch status {
	case model.StatusMatchExact:
		return text.FgGreen.Sprint(string(status))
	case model.StatusMatchQuantityDiff, model.StatusMatchUnitDiff:
		return text.FgYellow.Sprint(string(status))
	case model.StatusMissingInBOQ, model.StatusMissingInDrawing:
		return text.FgRed.Sprint(string(status))
	default:
		return string(status)
	}
}
