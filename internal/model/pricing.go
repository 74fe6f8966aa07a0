package model

// PriceListRow is one row of the reference price list: an opaque mapping
// from column name to string-or-number value. No schema is assumed beyond
// the column-name sniffing the pricing engine applies.
type PriceListRow map[string]any

// PriceMapping links one input item (by position in the caller's slice) to
// one price-list row (by position in the loaded list). Multiple mappings may
// share the same ItemIndex — they are ranked candidates for the caller to
// choose from. Every returned mapping satisfies
// 0 <= PriceListIndex < len(priceList); entries violating the bound are
// dropped before they reach any caller.
type PriceMapping struct {
	ItemIndex      int          `json:"item_index"`
	PriceListIndex int          `json:"price_list_index"`
	UnitPrice      string       `json:"unit_price,omitempty"`
	UnitManhour    string       `json:"unit_manhour,omitempty"`
	PriceRow       PriceListRow `json:"price_row,omitempty"`
	MatchReason    string       `json:"match_reason,omitempty"`
}
