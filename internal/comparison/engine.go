// Package comparison reconciles a drawing-derived item list against a
// BOQ-derived list. The matching oracle does the pairing; this package owns
// the request contract, index validation, and fallback parsing, and it must
// never throw on malformed oracle output — a failed match run degrades to
// zero rows plus the raw response text.
package comparison

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/pkg/llm"
)

const systemPrompt = `You are a quantity surveyor reconciling a drawing takeoff against a bill of quantities.
Return ONLY JSON, no prose.`

const promptFormat = `Compare the two item lists below and pair them up.

Drawing items (indexed):
%s

BOQ items (indexed):
%s

Statuses, use exactly one per row:
- match_exact: same item, same quantity, same unit
- match_quantity_diff: same item, quantities differ
- match_unit_diff: same item, units differ
- missing_in_boq: drawing item with no BOQ counterpart
- missing_in_drawing: BOQ item with no drawing counterpart
- no_match: cannot be classified with confidence

Rules:
- Sizes like 1", 1 inch and Ø1" are the same size.
- Work from the BOQ side: for each BOQ item, search the drawing list for its counterpart.
- Each item from either list may appear in AT MOST ONE row. Never consume an item twice.
- For every status other than match_exact, give a short note with the reason.

Return JSON: {"comparisons": [{"drawing_idx": <int or null>, "boq_idx": <int or null>, "status": "<status>", "note": "<reason>"}]}`

// Engine runs one-shot drawing/BOQ comparisons.
type Engine struct {
	client    llm.Client
	model     string
	maxTokens int64
}

// New creates a comparison Engine.
func New(client llm.Client, oracleModel string, maxTokens int64) *Engine {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Engine{client: client, model: oracleModel, maxTokens: maxTokens}
}

// Result is the outcome of one comparison run. Raw preserves the oracle's
// response text for caller-side diagnostics when parsing degraded.
type Result struct {
	Rows  []model.ComparisonRow `json:"rows"`
	Raw   string                `json:"raw,omitempty"`
	Usage model.TokenUsage      `json:"usage"`
}

// Compare pairs drawingItems against boqItems. Items with no usable
// description are not sent to the oracle; each becomes a local no_match row
// with an explanatory note. Oracle transport or parse failures yield zero
// rows and the raw text, never an error.
func (e *Engine) Compare(ctx context.Context, drawingItems, boqItems []model.ExtractedItem) *Result {
	result := &Result{}

	usableDrawing, unusableRows := partitionUsable(drawingItems, true)
	usableBOQ, unusableBOQRows := partitionUsable(boqItems, false)
	result.Rows = append(result.Rows, unusableRows...)
	result.Rows = append(result.Rows, unusableBOQRows...)

	if len(usableDrawing) == 0 && len(usableBOQ) == 0 {
		return result
	}

	prompt := fmt.Sprintf(promptFormat,
		renderSimplified(simplifyItems(usableDrawing)),
		renderSimplified(simplifyItems(usableBOQ)),
	)

	resp, err := e.client.CreateMessage(ctx, llm.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    []llm.SystemBlock{{Text: systemPrompt}},
		Messages:  []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		zap.L().Warn("comparison: oracle call failed", zap.Error(err))
		result.Raw = err.Error()
		return result
	}

	result.Usage = model.TokenUsage{
		InputTokens:         int(resp.Usage.InputTokens),
		OutputTokens:        int(resp.Usage.OutputTokens),
		CacheCreationTokens: int(resp.Usage.CacheCreationInputTokens),
		CacheReadTokens:     int(resp.Usage.CacheReadInputTokens),
	}

	text := llm.Text(resp)
	result.Raw = text

	if resp.Truncated() {
		zap.L().Warn("comparison: oracle response truncated")
		return result
	}

	entries, ok := parseEnvelope(text)
	if !ok {
		zap.L().Warn("comparison: oracle response not parseable",
			zap.Int("raw_len", len(text)),
		)
		return result
	}

	result.Rows = append(result.Rows, resolveRows(entries, usableDrawing, usableBOQ)...)
	return result
}

// partitionUsable drops items without a usable description and converts each
// into a local no_match row attributed to its side.
func partitionUsable(items []model.ExtractedItem, drawingSide bool) ([]model.ExtractedItem, []model.ComparisonRow) {
	usable := make([]model.ExtractedItem, 0, len(items))
	var rows []model.ComparisonRow
	for _, item := range items {
		item := item
		if item.Usable() {
			usable = append(usable, item)
			continue
		}
		row := model.ComparisonRow{
			Status: model.StatusNoMatch,
			Note:   "no usable description",
		}
		if drawingSide {
			row.DrawingItem = &item
		} else {
			row.BOQItem = &item
		}
		rows = append(rows, row)
	}
	return usable, rows
}

// simplifiedItem is the projection sent to the oracle: enough to match on,
// nothing to round-trip.
type simplifiedItem struct {
	Index       int    `json:"index"`
	Description string `json:"description,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Size        string `json:"size,omitempty"`
	Capacity    string `json:"capacity,omitempty"`
}

// simplifyItems is a pure projection step; indices refer to positions in the
// input slice.
func simplifyItems(items []model.ExtractedItem) []simplifiedItem {
	out := make([]simplifiedItem, len(items))
	for i, item := range items {
		out[i] = simplifiedItem{
			Index:       i,
			Description: item.DisplayDescription(),
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			Size:        item.Size,
			Capacity:    item.Capacity,
		}
	}
	return out
}

func renderSimplified(items []simplifiedItem) string {
	if len(items) == 0 {
		return "(none)"
	}
	data, _ := json.Marshal(items)
	return string(data)
}

// comparisonEntry is one oracle-returned index pair.
type comparisonEntry struct {
	DrawingIdx *int   `json:"drawing_idx"`
	BOQIdx     *int   `json:"boq_idx"`
	Status     string `json:"status"`
	Note       string `json:"note"`
}

// parseEnvelope accepts {"comparisons":[...]}, the synonyms
// {"matches":[...]} and {"result":[...]}, or a bare array.
func parseEnvelope(text string) ([]comparisonEntry, bool) {
	cleaned := llm.ExtractJSON(text)

	var entries []comparisonEntry
	if err := json.Unmarshal([]byte(cleaned), &entries); err == nil {
		return entries, true
	}

	var envelope struct {
		Comparisons []comparisonEntry `json:"comparisons"`
		Matches     []comparisonEntry `json:"matches"`
		Result      []comparisonEntry `json:"result"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, false
	}
	switch {
	case envelope.Comparisons != nil:
		return envelope.Comparisons, true
	case envelope.Matches != nil:
		return envelope.Matches, true
	case envelope.Result != nil:
		return envelope.Result, true
	}
	return nil, false
}

// resolveRows maps oracle index pairs back to the original item objects.
// Pure: any out-of-range or negative index drops the whole row (a wrong
// item silently corrupting downstream pricing is worse than a missing row),
// as does a row with neither side present. Unknown statuses coerce to
// no_match.
func resolveRows(entries []comparisonEntry, drawingItems, boqItems []model.ExtractedItem) []model.ComparisonRow {
	rows := make([]model.ComparisonRow, 0, len(entries))
	for _, entry := range entries {
		row := model.ComparisonRow{Note: strings.TrimSpace(entry.Note)}

		if entry.DrawingIdx != nil {
			idx := *entry.DrawingIdx
			if idx < 0 || idx >= len(drawingItems) {
				zap.L().Warn("comparison: dropping row with out-of-range drawing index",
					zap.Int("index", idx),
					zap.Int("len", len(drawingItems)),
				)
				continue
			}
			item := drawingItems[idx]
			row.DrawingItem = &item
		}
		if entry.BOQIdx != nil {
			idx := *entry.BOQIdx
			if idx < 0 || idx >= len(boqItems) {
				zap.L().Warn("comparison: dropping row with out-of-range boq index",
					zap.Int("index", idx),
					zap.Int("len", len(boqItems)),
				)
				continue
			}
			item := boqItems[idx]
			row.BOQItem = &item
		}
		if row.DrawingItem == nil && row.BOQItem == nil {
			continue
		}

		row.Status = model.ComparisonStatus(entry.Status)
		if !row.Status.Valid() {
			row.Status = model.StatusNoMatch
		}
		rows = append(rows, row)
	}
	return rows
}
