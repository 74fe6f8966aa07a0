package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/takeoff-group/recon-cli/internal/document"
	"github.com/takeoff-group/recon-cli/internal/extraction"
	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/internal/pricelist"
	"github.com/takeoff-group/recon-cli/internal/store"
	"github.com/takeoff-group/recon-cli/pkg/llm"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "recon.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initOracle() (llm.Client, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (RECON_ANTHROPIC_KEY)")
	}

	var opts []llm.Option
	if cfg.Anthropic.RatePerSecond > 0 {
		burst := cfg.Anthropic.RateBurst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, llm.WithRateLimit(cfg.Anthropic.RatePerSecond, burst))
	}
	return llm.NewClient(cfg.Anthropic.Key, opts...), nil
}

// drawingCategories resolves the category table for drawing extraction from
// config: an explicit YAML file wins, then the named built-in set.
func drawingCategories() ([]extraction.Category, error) {
	if cfg.Extraction.CategoriesFile != "" {
		return extraction.LoadCategories(cfg.Extraction.CategoriesFile)
	}
	switch cfg.Extraction.CategorySet {
	case "", "mep":
		return extraction.MEPCategories(), nil
	case "interior":
		return extraction.DrawingCategories(), nil
	default:
		return nil, eris.Errorf("unknown category set: %s", cfg.Extraction.CategorySet)
	}
}

func newOrchestrator(client llm.Client) *extraction.Orchestrator {
	return extraction.New(client, extraction.Options{
		Model:       cfg.Anthropic.HaikuModel,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Concurrency: cfg.Extraction.Concurrency,
	})
}

// priceListLoader picks a loader by file extension.
func priceListLoader(path string) (pricelist.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return &pricelist.XLSXLoader{Path: path, SheetName: cfg.PriceList.Sheet}, nil
	case ".csv":
		return &pricelist.CSVLoader{Path: path}, nil
	default:
		return nil, eris.Errorf("unsupported price list format: %s", path)
	}
}

// documentFromRequest wraps already-read text for the HTTP surface, where
// clients send document content inline.
func documentFromRequest(name, text string) document.Document {
	if name == "" {
		name = "request"
	}
	return document.Document{Name: name, Text: text}
}

func sumUsage(usages ...model.TokenUsage) model.TokenUsage {
	var total model.TokenUsage
	for _, u := range usages {
		total.Add(u)
	}
	return total
}

// logPhaseCost logs token usage and estimated USD for one phase.
func logPhaseCost(usage model.TokenUsage, oracleModel, phase string) {
	llm.TokenUsage{
		InputTokens:              int64(usage.InputTokens),
		OutputTokens:             int64(usage.OutputTokens),
		CacheCreationInputTokens: int64(usage.CacheCreationTokens),
		CacheReadInputTokens:     int64(usage.CacheReadTokens),
	}.LogCost(oracleModel, phase)
}
