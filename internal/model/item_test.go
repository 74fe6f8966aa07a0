package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedItemUnmarshalAliases(t *testing.T) {
	raw := `{"item_no": "1.02", "description": "Ball Valve", "dimensions": "3\"", "quantity": 4}`

	var item ExtractedItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))

	assert.Equal(t, "1.02", item.ItemNumber)
	assert.Equal(t, "3\"", item.Size)
	assert.Equal(t, "4", item.Quantity)
}

func TestExtractedItemUnmarshalCanonicalKeysWin(t *testing.T) {
	raw := `{"item_number": "A-1", "item_no": "B-2", "size": "80mm", "dimensions": "3\""}`

	var item ExtractedItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))

	assert.Equal(t, "A-1", item.ItemNumber)
	assert.Equal(t, "80mm", item.Size)
}

func TestExtractedItemUnmarshalNumericFields(t *testing.T) {
	raw := `{"description": "Pipe", "quantity": 12.5, "unit_price": 300}`

	var item ExtractedItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))

	assert.Equal(t, "12.5", item.Quantity)
	assert.Equal(t, "300", item.UnitPrice)
}

func TestUsable(t *testing.T) {
	assert.False(t, ExtractedItem{}.Usable())
	assert.False(t, ExtractedItem{Description: "   "}.Usable())
	assert.True(t, ExtractedItem{Description: "Gate Valve"}.Usable())
	assert.True(t, ExtractedItem{FullDescription: "Diesel day tank 1000L"}.Usable())
}

func TestDisplayDescription(t *testing.T) {
	item := ExtractedItem{Description: "short", FullDescription: "long form"}
	assert.Equal(t, "long form", item.DisplayDescription())

	item = ExtractedItem{Description: "short"}
	assert.Equal(t, "short", item.DisplayDescription())
}

func TestComparisonStatusValid(t *testing.T) {
	for _, s := range AllComparisonStatuses() {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, ComparisonStatus("partial_match").Valid())
	assert.False(t, ComparisonStatus("").Valid())
}

func TestSummarize(t *testing.T) {
	rows := []ComparisonRow{
		{Status: StatusMatchExact},
		{Status: StatusMatchExact},
		{Status: StatusMissingInBOQ},
	}
	s := Summarize(rows)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Counts[StatusMatchExact])
	assert.Equal(t, 1, s.Counts[StatusMissingInBOQ])
	assert.Equal(t, 0, s.Counts[StatusNoMatch])
}

func TestTokenUsageAdd(t *testing.T) {
	var u TokenUsage
	u.Add(TokenUsage{InputTokens: 100, OutputTokens: 20})
	u.Add(TokenUsage{InputTokens: 50, OutputTokens: 5, CacheReadTokens: 10})
	assert.Equal(t, 150, u.InputTokens)
	assert.Equal(t, 25, u.OutputTokens)
	assert.Equal(t, 10, u.CacheReadTokens)
}
