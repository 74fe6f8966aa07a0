package model

// ComparisonStatus classifies one reconciled row. The set is closed; every
// row resolves to exactly one status, with StatusNoMatch as the fallback for
// anything the matching oracle could not classify.
type ComparisonStatus string

const (
	StatusMatchExact        ComparisonStatus = "match_exact"
	StatusMatchQuantityDiff ComparisonStatus = "match_quantity_diff"
	StatusMatchUnitDiff     ComparisonStatus = "match_unit_diff"
	StatusMissingInBOQ      ComparisonStatus = "missing_in_boq"
	StatusMissingInDrawing  ComparisonStatus = "missing_in_drawing"
	StatusNoMatch           ComparisonStatus = "no_match"
)

// AllComparisonStatuses returns the closed status set in outcome-priority
// order.
func AllComparisonStatuses() []ComparisonStatus {
	return []ComparisonStatus{
		StatusMatchExact,
		StatusMatchQuantityDiff,
		StatusMatchUnitDiff,
		StatusMissingInBOQ,
		StatusMissingInDrawing,
		StatusNoMatch,
	}
}

// Valid reports whether s is a member of the closed status set.
func (s ComparisonStatus) Valid() bool {
	for _, v := range AllComparisonStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// ComparisonRow pairs a drawing-side item with a BOQ-side item. At least one
// side is always present; a missing side is nil. Note carries the oracle's
// justification for any non-exact status.
type ComparisonRow struct {
	DrawingItem *ExtractedItem   `json:"drawing_item,omitempty"`
	BOQItem     *ExtractedItem   `json:"boq_item,omitempty"`
	Status      ComparisonStatus `json:"status"`
	Note        string           `json:"note,omitempty"`
}

// ComparisonSummary tallies rows per status for reports.
type ComparisonSummary struct {
	Total  int                      `json:"total"`
	Counts map[ComparisonStatus]int `json:"counts"`
}

// Summarize tallies rows by status.
func Summarize(rows []ComparisonRow) ComparisonSummary {
	s := ComparisonSummary{
		Total:  len(rows),
		Counts: make(map[ComparisonStatus]int, len(AllComparisonStatuses())),
	}
	for _, r := range rows {
		s.Counts[r.Status]++
	}
	return s
}
