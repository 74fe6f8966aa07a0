// Package pricing maps reconciled items to reference price-list rows. The
// oracle proposes candidate matches; this package owns the projection sent
// to it, per-entry validation of what comes back, and the hard bounds
// postcondition: no returned mapping ever references a row outside the
// loaded price list. Intentionally one-to-many — several ranked candidates
// per item, for a human to choose from.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/internal/pricelist"
	"github.com/takeoff-group/recon-cli/internal/units"
	"github.com/takeoff-group/recon-cli/pkg/llm"
)

const systemPrompt = `You are a cost estimator matching construction line items to a reference price list.
Return ONLY JSON, no prose.`

const promptFormat = `Match each item below to rows of the price list.

Items (indexed, with normalized size and category):
%s

Price list rows (indexed, relevant columns only):
%s

Matching rules by category:
- STORAGE_TANK, DAY_TANK: match on exact capacity AND tank type.
- BALL_VALVE, CHECK_VALVE, GATE_VALVE, STRAINER, PIPE, FLEXIBLE_HOSE, VENT: match on the normalized size in mm.
- PUMP: match on flow rate and pressure.
- Everything else (OTHER): match on semantic similarity of the descriptions.

When more than one price-list row qualifies (for example several ball valves of the same size from different manufacturers), return ALL qualifying rows as separate entries for that item — do not collapse to a single best guess. Order entries for one item from best to worst match.

Return JSON: {"mappings": [{"item_index": <int>, "price_list_index": <int>, "match_reason": "<why this row>"}]}`

// Engine runs one-shot item-to-price-list mapping.
type Engine struct {
	client    llm.Client
	loader    pricelist.Loader
	model     string
	maxTokens int64
}

// New creates a pricing Engine.
func New(client llm.Client, loader pricelist.Loader, oracleModel string, maxTokens int64) *Engine {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Engine{client: client, loader: loader, model: oracleModel, maxTokens: maxTokens}
}

// Result is the outcome of one mapping run. Raw preserves the oracle text
// for diagnostics when parsing degraded.
type Result struct {
	Mappings []model.PriceMapping `json:"mappings"`
	Raw      string               `json:"raw,omitempty"`
	Usage    model.TokenUsage     `json:"usage"`
}

// pricedItem is the projection of one input item sent to the oracle.
type pricedItem struct {
	Index          int    `json:"index"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category"`
	NormalizedSize string `json:"normalized_size,omitempty"`
	Capacity       string `json:"capacity,omitempty"`
	Quantity       string `json:"quantity,omitempty"`
	Unit           string `json:"unit,omitempty"`
}

// simplifyItems attaches the normalized size and category to each item.
// Pure projection step; indices refer to positions in the input slice.
func simplifyItems(items []model.ExtractedItem) []pricedItem {
	out := make([]pricedItem, len(items))
	for i, item := range items {
		out[i] = pricedItem{
			Index:          i,
			Description:    item.DisplayDescription(),
			Category:       string(units.Categorize(item)),
			NormalizedSize: units.NormalizeSize(item.Size),
			Capacity:       item.Capacity,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
		}
	}
	return out
}

// indexedRow pairs a sniffed projection with its position in the loaded
// price list.
type indexedRow struct {
	Index int                `json:"index"`
	Row   model.PriceListRow `json:"row"`
}

func projectRows(rows []model.PriceListRow) []indexedRow {
	out := make([]indexedRow, len(rows))
	for i, row := range rows {
		out[i] = indexedRow{Index: i, Row: sniffColumns(row)}
	}
	return out
}

// MapToPriceList proposes ranked price-list candidates for each item.
// Loading the price list is the only hard failure; oracle transport or
// parse failures degrade to zero mappings plus the raw response text.
func (e *Engine) MapToPriceList(ctx context.Context, items []model.ExtractedItem) (*Result, error) {
	result := &Result{}
	if len(items) == 0 {
		return result, nil
	}

	priceList, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(priceList) == 0 {
		return result, nil
	}

	itemsJSON, _ := json.Marshal(simplifyItems(items))
	rowsJSON, _ := json.Marshal(projectRows(priceList))
	prompt := fmt.Sprintf(promptFormat, itemsJSON, rowsJSON)

	resp, err := e.client.CreateMessage(ctx, llm.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    []llm.SystemBlock{{Text: systemPrompt}},
		Messages:  []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		zap.L().Warn("pricing: oracle call failed", zap.Error(err))
		result.Raw = err.Error()
		return result, nil
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
		zap.L().Warn("pricing: oracle response truncated")
		return result, nil
	}

	result.Mappings = resolveMappings(text, len(items), priceList)
	return result, nil
}

// resolveMappings parses the oracle envelope and applies the validation
// gauntlet: static schema per entry, then the dynamic bounds. Failures drop
// the entry — never clamp, never substitute a default. Accepted entries get
// the full price row attached plus the unit price and manhour copied out so
// downstream consumers do not re-resolve the price list.
func resolveMappings(text string, itemCount int, priceList []model.PriceListRow) []model.PriceMapping {
	cleaned := llm.ExtractJSON(text)

	var envelope struct {
		Mappings []json.RawMessage `json:"mappings"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil || envelope.Mappings == nil {
		// Bare-array fallback.
		var bare []json.RawMessage
		if err := json.Unmarshal([]byte(cleaned), &bare); err != nil {
			zap.L().Warn("pricing: oracle response not parseable")
			return nil
		}
		envelope.Mappings = bare
	}

	mappings := make([]model.PriceMapping, 0, len(envelope.Mappings))
	for _, raw := range envelope.Mappings {
		if !validEntry(raw) {
			zap.L().Warn("pricing: dropping mapping entry failing schema validation")
			continue
		}

		var entry struct {
			ItemIndex      int    `json:"item_index"`
			PriceListIndex int    `json:"price_list_index"`
			MatchReason    string `json:"match_reason"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}

		if entry.ItemIndex >= itemCount || entry.PriceListIndex >= len(priceList) {
			zap.L().Warn("pricing: dropping mapping entry with out-of-range index",
				zap.Int("item_index", entry.ItemIndex),
				zap.Int("price_list_index", entry.PriceListIndex),
			)
			continue
		}

		row := priceList[entry.PriceListIndex]
		mappings = append(mappings, model.PriceMapping{
			ItemIndex:      entry.ItemIndex,
			PriceListIndex: entry.PriceListIndex,
			UnitPrice:      unitPrice(row),
			UnitManhour:    unitManhour(row),
			PriceRow:       row,
			MatchReason:    entry.MatchReason,
		})
	}
	return mappings
}

// ApplyMappings returns new items with pricing fields filled from the first
// (best-ranked) candidate per item. Input items are never mutated.
func ApplyMappings(items []model.ExtractedItem, mappings []model.PriceMapping) []model.ExtractedItem {
	out := make([]model.ExtractedItem, len(items))
	copy(out, items)
	seen := make(map[int]bool, len(mappings))
	for _, m := range mappings {
		if m.ItemIndex < 0 || m.ItemIndex >= len(out) || seen[m.ItemIndex] {
			continue
		}
		seen[m.ItemIndex] = true
		out[m.ItemIndex].UnitPrice = m.UnitPrice
		out[m.ItemIndex].UnitManhour = m.UnitManhour
	}
	return out
}
