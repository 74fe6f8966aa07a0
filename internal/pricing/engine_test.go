package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/pkg/llm"
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) CreateMessage(ctx context.Context, req llm.MessageRequest) (*llm.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.MessageResponse), args.Error(1)
}

var _ llm.Client = (*mockOracle)(nil)

type stubLoader struct {
	rows []model.PriceListRow
	err  error
}

func (s *stubLoader) Load(context.Context) ([]model.PriceListRow, error) {
	return s.rows, s.err
}

func textResponse(text string) *llm.MessageResponse {
	return &llm.MessageResponse{
		Content:    []llm.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
		Usage:      llm.TokenUsage{InputTokens: 300, OutputTokens: 60},
	}
}

func ballValvePriceList() []model.PriceListRow {
	return []model.PriceListRow{
		{"Item Description": "Ball valve 80mm flanged", "Size": "80mm", "Unit Price": "45.00", "Unit Manhour": "0.5"},
		{"Item Description": "Ball valve 80mm threaded", "Size": "80mm", "Unit Price": "32.50", "Unit Manhour": "0.4"},
		{"Item Description": "Gate valve 50mm", "Size": "50mm", "Unit Price": "28.00", "Unit Manhour": "0.4"},
	}
}

func TestMapToPriceListMultipleCandidatesPerItem(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"mappings": [
			{"item_index": 0, "price_list_index": 0, "match_reason": "same size, flanged like drawing spec"},
			{"item_index": 0, "price_list_index": 1, "match_reason": "same size, threaded alternative"}
		]}`), nil)

	items := []model.ExtractedItem{
		{Description: `Ball Valve 3"`, ItemType: "BALL_VALVE", Size: `3"`},
	}

	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	result, err := e.MapToPriceList(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, result.Mappings, 2)
	for _, m := range result.Mappings {
		assert.Equal(t, 0, m.ItemIndex)
		assert.Less(t, m.PriceListIndex, 3)
	}
	assert.NotEqual(t, result.Mappings[0].PriceListIndex, result.Mappings[1].PriceListIndex)

	first := result.Mappings[0]
	assert.Equal(t, "45.00", first.UnitPrice)
	assert.Equal(t, "0.5", first.UnitManhour)
	assert.Equal(t, "Ball valve 80mm flanged", first.PriceRow["Item Description"])
	assert.Equal(t, "same size, flanged like drawing spec", first.MatchReason)
}

func TestMapToPriceListRejectsOutOfRangeIndices(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"mappings": [
			{"item_index": 0, "price_list_index": 99},
			{"item_index": 7, "price_list_index": 0},
			{"item_index": -1, "price_list_index": 0},
			{"item_index": 0, "price_list_index": -3},
			{"item_index": 0, "price_list_index": 2, "match_reason": "valid"}
		]}`), nil)

	items := []model.ExtractedItem{{Description: "Gate valve 50mm"}}

	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	result, err := e.MapToPriceList(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, result.Mappings, 1)
	assert.Equal(t, 2, result.Mappings[0].PriceListIndex)
	for _, m := range result.Mappings {
		assert.GreaterOrEqual(t, m.PriceListIndex, 0)
		assert.Less(t, m.PriceListIndex, len(ballValvePriceList()))
	}
}

func TestMapToPriceListRejectsNonIntegerIndices(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"mappings": [
			{"item_index": "0", "price_list_index": 1},
			{"item_index": 0.5, "price_list_index": 1},
			{"item_index": 0},
			{"item_index": 0, "price_list_index": 1}
		]}`), nil)

	items := []model.ExtractedItem{{Description: "Ball valve"}}

	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	result, err := e.MapToPriceList(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, result.Mappings, 1)
	assert.Equal(t, 1, result.Mappings[0].PriceListIndex)
}

func TestMapToPriceListBareArrayEnvelope(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`[{"item_index": 0, "price_list_index": 0}]`), nil)

	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	result, err := e.MapToPriceList(context.Background(), []model.ExtractedItem{{Description: "valve"}})
	require.NoError(t, err)
	require.Len(t, result.Mappings, 1)
}

func TestMapToPriceListMalformedResponseDegrades(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("no mappings today"), nil)

	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	result, err := e.MapToPriceList(context.Background(), []model.ExtractedItem{{Description: "valve"}})
	require.NoError(t, err)
	assert.Empty(t, result.Mappings)
	assert.Equal(t, "no mappings today", result.Raw)
}

func TestMapToPriceListTransportFailureDegrades(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))

	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	result, err := e.MapToPriceList(context.Background(), []model.ExtractedItem{{Description: "valve"}})
	require.NoError(t, err)
	assert.Empty(t, result.Mappings)
	assert.Contains(t, result.Raw, "timeout")
}

func TestMapToPriceListTruncatedResponseDegrades(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&llm.MessageResponse{
			Content:    []llm.ContentBlock{{Type: "text", Text: `{"mappings": [{"item_index": 0`}},
			StopReason: llm.StopReasonMaxTokens,
		}, nil)

	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	result, err := e.MapToPriceList(context.Background(), []model.ExtractedItem{{Description: "valve"}})
	require.NoError(t, err)
	assert.Empty(t, result.Mappings)
}

func TestMapToPriceListLoaderFailureIsHard(t *testing.T) {
	e := New(&mockOracle{}, &stubLoader{err: errors.New("file not found")}, "m", 0)
	_, err := e.MapToPriceList(context.Background(), []model.ExtractedItem{{Description: "valve"}})
	assert.Error(t, err)
}

func TestMapToPriceListNoItemsSkipsOracle(t *testing.T) {
	oracle := &mockOracle{}
	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	result, err := e.MapToPriceList(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Mappings)
	oracle.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestMapToPriceListPromptCarriesNormalizedSizeAndCategory(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req llm.MessageRequest) bool {
		prompt := req.Messages[0].Content
		return strings.Contains(prompt, `"normalized_size":"80mm"`) &&
			strings.Contains(prompt, `"category":"BALL_VALVE"`)
	})).Return(textResponse(`{"mappings": []}`), nil)

	items := []model.ExtractedItem{{Description: `Ball valve`, Size: `3"`}}

	e := New(oracle, &stubLoader{rows: ballValvePriceList()}, "m", 0)
	_, err := e.MapToPriceList(context.Background(), items)
	require.NoError(t, err)
	oracle.AssertExpectations(t)
}

func TestApplyMappings(t *testing.T) {
	items := []model.ExtractedItem{
		{Description: "Ball valve"},
		{Description: "Gate valve"},
	}
	mappings := []model.PriceMapping{
		{ItemIndex: 0, PriceListIndex: 0, UnitPrice: "45.00", UnitManhour: "0.5"},
		{ItemIndex: 0, PriceListIndex: 1, UnitPrice: "32.50", UnitManhour: "0.4"}, // lower-ranked, ignored
	}

	priced := ApplyMappings(items, mappings)

	assert.Equal(t, "45.00", priced[0].UnitPrice)
	assert.Equal(t, "0.5", priced[0].UnitManhour)
	assert.Empty(t, priced[1].UnitPrice)
	// Originals untouched.
	assert.Empty(t, items[0].UnitPrice)
}
