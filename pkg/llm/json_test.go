package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONBareObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON(`{"a":1}`))
}

func TestExtractJSONFenced(t *testing.T) {
	input := "```json\n{\"items\": []}\n```"
	assert.Equal(t, `{"items": []}`, ExtractJSON(input))

	input = "```\n[1,2,3]\n```"
	assert.Equal(t, `[1,2,3]`, ExtractJSON(input))
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	input := `Here are the extracted items:

[{"description": "Ball Valve"}]

Let me know if you need anything else.`
	assert.Equal(t, `[{"description": "Ball Valve"}]`, ExtractJSON(input))
}

func TestExtractJSONFirstBalancedSpanNotLastBrace(t *testing.T) {
	// A trailing stray brace in prose must not extend the span.
	input := `{"a": 1} trailing text with a stray }`
	assert.Equal(t, `{"a": 1}`, ExtractJSON(input))
}

func TestExtractJSONNestedAndStrings(t *testing.T) {
	input := `note: {"a": {"b": "contains } brace and \" quote"}, "c": [1, 2]} done`
	assert.Equal(t, `{"a": {"b": "contains } brace and \" quote"}, "c": [1, 2]}`, ExtractJSON(input))
}

func TestExtractJSONUnbalancedReturnsInput(t *testing.T) {
	input := `{"a": [1, 2`
	assert.Equal(t, input, ExtractJSON(input))
}

func TestExtractJSONNoJSON(t *testing.T) {
	assert.Equal(t, "no json here", ExtractJSON("no json here"))
	assert.Equal(t, "", ExtractJSON(""))
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))

	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "part one"},
		{Type: "text", Text: ""},
		{Type: "text", Text: "part two"},
	}}
	assert.Equal(t, "part one\npart two", Text(resp))
}

func TestTruncated(t *testing.T) {
	assert.False(t, (*MessageResponse)(nil).Truncated())
	assert.False(t, (&MessageResponse{StopReason: "end_turn"}).Truncated())
	assert.True(t, (&MessageResponse{StopReason: StopReasonMaxTokens}).Truncated())
}

func TestEstimateCostUnknownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.Zero(t, u.EstimateCost("some-future-model"))
}

func TestEstimateCostKnownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 4.80, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
}
