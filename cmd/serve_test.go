package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/takeoff-group/recon-cli/internal/config"
	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/internal/store"
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

func textResponse(text string) *llm.MessageResponse {
	return &llm.MessageResponse{
		Content:    []llm.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
		Usage:      llm.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}
}

func newTestServer(t *testing.T, oracle llm.Client) *apiServer {
	t.Helper()

	cfg = &config.Config{}
	cfg.Anthropic.HaikuModel = "claude-haiku-4-5-20251001"
	cfg.Anthropic.SonnetModel = "claude-sonnet-4-5-20250929"
	cfg.Anthropic.MaxTokens = 4096
	cfg.Extraction.CategorySet = "mep"
	cfg.Extraction.Concurrency = 2

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	return &apiServer{store: st, oracle: oracle}
}

func TestServe_Health(t *testing.T) {
	srv := newTestServer(t, &mockOracle{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServe_Extract_BOQ(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`[{"description": "Ball valve", "size": "2\"", "quantity": "4"}]`), nil)

	srv := newTestServer(t, oracle)

	body, _ := json.Marshal(map[string]any{"text": "BOQ line items...", "boq": true})
	req := httptest.NewRequest(http.MethodPost, "/api/extract", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Items []model.ExtractedItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Ball valve", result.Items[0].Description)
}

func TestServe_Extract_MissingText(t *testing.T) {
	srv := newTestServer(t, &mockOracle{})

	req := httptest.NewRequest(http.MethodPost, "/api/extract", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text is required")
}

func TestServe_Extract_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &mockOracle{})

	req := httptest.NewRequest(http.MethodPost, "/api/extract", bytes.NewReader([]byte(`not json`)))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_Compare(t *testing.T) {
	oracle := &mockOracle{}
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"comparisons": [{"drawing_idx": 0, "boq_idx": 0, "status": "match_exact"}]}`), nil)

	srv := newTestServer(t, oracle)

	body, _ := json.Marshal(compareRequest{
		DrawingItems: []model.ExtractedItem{{Description: "Gate valve 100mm"}},
		BOQItems:     []model.ExtractedItem{{Description: "Gate valve 100mm"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Rows []model.ComparisonRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Rows, 1)
	assert.Equal(t, model.StatusMatchExact, result.Rows[0].Status)
}

func TestServe_Price_MissingPriceList(t *testing.T) {
	srv := newTestServer(t, &mockOracle{})

	body, _ := json.Marshal(priceRequest{Items: []model.ExtractedItem{}})
	req := httptest.NewRequest(http.MethodPost, "/api/price", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price_list is required")
}

func TestServe_Runs_ListAndGet(t *testing.T) {
	srv := newTestServer(t, &mockOracle{})
	ctx := context.Background()

	run, err := srv.store.CreateRun(ctx, "fuel-farm")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var runs []model.ReconciliationRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil)
	rec = httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.ReconciliationRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "fuel-farm", got.Project)
}

func TestServe_Runs_GetMissing(t *testing.T) {
	srv := newTestServer(t, &mockOracle{})

	req := httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_Runs_ListEmpty(t *testing.T) {
	srv := newTestServer(t, &mockOracle{})

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
