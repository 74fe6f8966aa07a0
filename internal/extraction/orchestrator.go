// Package extraction turns unstructured drawing and BOQ documents into
// ExtractedItem lists by issuing one independent oracle request per
// category. Category calls settle independently: one failure is captured as
// data and never aborts its siblings.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/takeoff-group/recon-cli/internal/document"
	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/pkg/llm"
)

// defaultConcurrency caps concurrent category calls when no limit is
// configured.
const defaultConcurrency = 10

const systemPrompt = `You are a quantity surveyor extracting line items from construction project documents.
Return ONLY a JSON array of item objects, no prose. Each object may carry:
item_number, item_type, description, full_description, capacity, size, quantity, unit, remarks.
Use strings for all values. Omit fields you cannot observe; never invent values.`

const userPromptFormat = `Extract all %s items from the document below.

Category focus: %s
%s
Extract ONLY items belonging to this category. Ignore all items from every other category.

Document: %s
%s`

// Options configures the orchestrator.
type Options struct {
	Model       string
	MaxTokens   int64
	Concurrency int
}

// Orchestrator fans extraction out across categories.
type Orchestrator struct {
	client llm.Client
	opts   Options
}

// New creates an Orchestrator.
func New(client llm.Client, opts Options) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8192
	}
	return &Orchestrator{client: client, opts: opts}
}

// Result aggregates all categories of one extraction run. Items holds the
// concatenation of successful categories in category-declaration order;
// Errors holds one entry per failed category. All categories failing yields
// empty Items and a full Errors slice, never a Go error.
type Result struct {
	Items         []model.ExtractedItem `json:"items"`
	RawByCategory map[string]string     `json:"raw_by_category,omitempty"`
	Errors        []string              `json:"errors,omitempty"`
	Usage         model.TokenUsage      `json:"usage"`
}

// ExtractStructured issues one oracle call per category, concurrently, and
// aggregates the survivors. Failed categories (transport error, truncated
// output, unparseable JSON) contribute zero items and one error string.
func (o *Orchestrator) ExtractStructured(ctx context.Context, doc document.Document, cats []Category) *Result {
	result := &Result{
		RawByCategory: make(map[string]string, len(cats)),
	}
	if len(cats) == 0 {
		return result
	}

	type categoryOutcome struct {
		items []model.ExtractedItem
		raw   string
		err   string
		usage model.TokenUsage
	}
	outcomes := make([]categoryOutcome, len(cats))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)

	for i, cat := range cats {
		i, cat := i, cat
		g.Go(func() error {
			resp, err := o.client.CreateMessage(gCtx, o.buildRequest(doc, cat))
			if err != nil {
				zap.L().Warn("extraction: category call failed",
					zap.String("category", cat.Name),
					zap.Error(err),
				)
				outcomes[i].err = fmt.Sprintf("%s: %v", cat.Name, err)
				return nil
			}

			outcomes[i].usage = model.TokenUsage{
				InputTokens:         int(resp.Usage.InputTokens),
				OutputTokens:        int(resp.Usage.OutputTokens),
				CacheCreationTokens: int(resp.Usage.CacheCreationInputTokens),
				CacheReadTokens:     int(resp.Usage.CacheReadInputTokens),
			}

			text := llm.Text(resp)
			outcomes[i].raw = text

			// Truncated output is partial JSON at best; surface it as a
			// category error instead of silently parsing a prefix.
			if resp.Truncated() {
				zap.L().Warn("extraction: category response truncated",
					zap.String("category", cat.Name),
				)
				outcomes[i].err = fmt.Sprintf("%s: response truncated at output token limit", cat.Name)
				return nil
			}

			items, err := parseItems(text)
			if err != nil {
				zap.L().Warn("extraction: category response not parseable",
					zap.String("category", cat.Name),
					zap.Error(err),
				)
				outcomes[i].err = fmt.Sprintf("%s: %v", cat.Name, err)
				return nil
			}

			outcomes[i].items = items
			return nil
		})
	}

	// Group functions always return nil; failures travel in outcomes.
	_ = g.Wait()

	// Reassemble in category-declaration order, regardless of completion
	// order.
	for i, cat := range cats {
		out := outcomes[i]
		result.Usage.Add(out.usage)
		if out.raw != "" {
			result.RawByCategory[cat.Name] = out.raw
		}
		if out.err != "" {
			result.Errors = append(result.Errors, out.err)
			continue
		}
		result.Items = append(result.Items, out.items...)
	}

	zap.L().Info("extraction: settled",
		zap.String("document", doc.Name),
		zap.Int("categories", len(cats)),
		zap.Int("failed", len(result.Errors)),
		zap.Int("items", len(result.Items)),
	)
	return result
}

// ExtractBOQ runs the single-category BOQ-side extraction.
func (o *Orchestrator) ExtractBOQ(ctx context.Context, doc document.Document) *Result {
	return o.ExtractStructured(ctx, doc, []Category{BOQCategory()})
}

func (o *Orchestrator) buildRequest(doc document.Document, cat Category) llm.MessageRequest {
	var rules string
	for _, r := range cat.Rules {
		rules += "- " + r + "\n"
	}

	body := doc.Text
	if doc.Multimodal() {
		body = "(see attached drawing pages)"
	}
	prompt := fmt.Sprintf(userPromptFormat, cat.Name, cat.Focus, rules, doc.Name, body)

	msg := llm.Message{Role: "user", Content: prompt}
	for _, img := range doc.Images {
		msg.Images = append(msg.Images, llm.ImageBlock{
			MediaType: img.MediaType,
			Data:      img.Data,
		})
	}

	return llm.MessageRequest{
		Model:     o.opts.Model,
		MaxTokens: o.opts.MaxTokens,
		System:    []llm.SystemBlock{{Text: systemPrompt}},
		Messages:  []llm.Message{msg},
	}
}

// parseItems coerces oracle output into items. Accepts a bare array or an
// {"items": [...]} envelope; array elements that are not objects are
// discarded.
func parseItems(text string) ([]model.ExtractedItem, error) {
	cleaned := llm.ExtractJSON(text)

	var rawList []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &rawList); err != nil {
		var envelope struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil || envelope.Items == nil {
			return nil, fmt.Errorf("response is not a JSON item list")
		}
		rawList = envelope.Items
	}

	items := make([]model.ExtractedItem, 0, len(rawList))
	for _, raw := range rawList {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue // not a plain record
		}
		var item model.ExtractedItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
