package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeoff-group/recon-cli/internal/config"
	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/internal/pricelist"
)

func TestPriceListLoader_ByExtension(t *testing.T) {
	cfg = &config.Config{}

	xl, err := priceListLoader("prices.xlsx")
	require.NoError(t, err)
	assert.IsType(t, &pricelist.XLSXLoader{}, xl)

	cl, err := priceListLoader("prices.csv")
	require.NoError(t, err)
	assert.IsType(t, &pricelist.CSVLoader{}, cl)

	_, err = priceListLoader("prices.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported price list format")
}

func TestDrawingCategories_BuiltInSets(t *testing.T) {
	cfg = &config.Config{}

	cfg.Extraction.CategorySet = "mep"
	cats, err := drawingCategories()
	require.NoError(t, err)
	require.Len(t, cats, 1)

	cfg.Extraction.CategorySet = "interior"
	cats, err = drawingCategories()
	require.NoError(t, err)
	assert.Greater(t, len(cats), 1)

	cfg.Extraction.CategorySet = "bogus"
	_, err = drawingCategories()
	require.Error(t, err)
}

func TestSumUsage(t *testing.T) {
	total := sumUsage(
		model.TokenUsage{InputTokens: 100, OutputTokens: 20},
		model.TokenUsage{InputTokens: 50, OutputTokens: 5},
	)
	assert.Equal(t, 150, total.InputTokens)
	assert.Equal(t, 25, total.OutputTokens)
}

func TestDocumentFromRequest(t *testing.T) {
	doc := documentFromRequest("", "some text")
	assert.Equal(t, "request", doc.Name)
	assert.Equal(t, "some text", doc.Text)
	assert.False(t, doc.Multimodal())
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{}
	cfg.Store.Driver = "mysql"

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}
