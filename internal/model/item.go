package model

import (
	"encoding/json"
	"strings"
)

// ExtractedItem is a single line item derived from a drawing or BOQ document.
// All fields are optional strings; an empty field means "not observed", not
// zero. Items are immutable value objects — engines return new slices and
// never mutate their inputs.
type ExtractedItem struct {
	ItemNumber      string `json:"item_number,omitempty"`
	ItemType        string `json:"item_type,omitempty"`
	Description     string `json:"description,omitempty"`
	FullDescription string `json:"full_description,omitempty"`
	Capacity        string `json:"capacity,omitempty"`
	Size            string `json:"size,omitempty"`
	Quantity        string `json:"quantity,omitempty"`
	Unit            string `json:"unit,omitempty"`
	Remarks         string `json:"remarks,omitempty"`

	// Populated only after price mapping.
	UnitPrice    string `json:"unit_price,omitempty"`
	TotalPrice   string `json:"total_price,omitempty"`
	UnitManhour  string `json:"unit_manhour,omitempty"`
	TotalManhour string `json:"total_manhour,omitempty"`
}

// UnmarshalJSON decodes an item tolerantly: every field accepts a string or
// a bare number, and the alias keys item_no and dimensions map to
// item_number and size. Oracle output is inconsistent about both.
func (e *ExtractedItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemNumber      FlexString `json:"item_number"`
		ItemNo          FlexString `json:"item_no"`
		ItemType        FlexString `json:"item_type"`
		Description     FlexString `json:"description"`
		FullDescription FlexString `json:"full_description"`
		Capacity        FlexString `json:"capacity"`
		Size            FlexString `json:"size"`
		Dimensions      FlexString `json:"dimensions"`
		Quantity        FlexString `json:"quantity"`
		Unit            FlexString `json:"unit"`
		Remarks         FlexString `json:"remarks"`
		UnitPrice       FlexString `json:"unit_price"`
		TotalPrice      FlexString `json:"total_price"`
		UnitManhour     FlexString `json:"unit_manhour"`
		TotalManhour    FlexString `json:"total_manhour"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ItemNumber = string(raw.ItemNumber)
	if e.ItemNumber == "" {
		e.ItemNumber = string(raw.ItemNo)
	}
	e.ItemType = string(raw.ItemType)
	e.Description = string(raw.Description)
	e.FullDescription = string(raw.FullDescription)
	e.Capacity = string(raw.Capacity)
	e.Size = string(raw.Size)
	if e.Size == "" {
		e.Size = string(raw.Dimensions)
	}
	e.Quantity = string(raw.Quantity)
	e.Unit = string(raw.Unit)
	e.Remarks = string(raw.Remarks)
	e.UnitPrice = string(raw.UnitPrice)
	e.TotalPrice = string(raw.TotalPrice)
	e.UnitManhour = string(raw.UnitManhour)
	e.TotalManhour = string(raw.TotalManhour)
	return nil
}

// Usable reports whether the item carries any usable description text.
// Items failing this check are filtered before comparison.
func (e ExtractedItem) Usable() bool {
	return strings.TrimSpace(e.Description) != "" || strings.TrimSpace(e.FullDescription) != ""
}

// DisplayDescription returns the fullest available description.
func (e ExtractedItem) DisplayDescription() string {
	if strings.TrimSpace(e.FullDescription) != "" {
		return e.FullDescription
	}
	return e.Description
}

// FlexString decodes a JSON string, number, or null into a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexString(num.String())
		return nil
	}
	*f = ""
	return nil
}
