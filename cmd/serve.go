package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/takeoff-group/recon-cli/internal/comparison"
	"github.com/takeoff-group/recon-cli/internal/model"
	"github.com/takeoff-group/recon-cli/internal/pricing"
	"github.com/takeoff-group/recon-cli/internal/store"
	"github.com/takeoff-group/recon-cli/pkg/llm"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reconciliation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client, err := initOracle()
		if err != nil {
			return err
		}

		srv := &apiServer{store: st, oracle: client}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.routes(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer exposes the engines over JSON endpoints that mirror the engine
// contracts. Calls are synchronous; degraded engine results come back with
// status 200 and their error strings in the body.
type apiServer struct {
	store  store.Store
	oracle llm.Client
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/compare", s.handleCompare)
		r.Post("/price", s.handlePrice)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type extractRequest struct {
	Text string `json:"text"`
	Name string `json:"name,omitempty"`
	BOQ  bool   `json:"boq,omitempty"`
}

func (s *apiServer) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	doc := documentFromRequest(req.Name, req.Text)
	orch := newOrchestrator(s.oracle)

	if req.BOQ {
		writeJSON(w, http.StatusOK, orch.ExtractBOQ(r.Context(), doc))
		return
	}
	cats, err := drawingCategories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, eris.ToString(err, false))
		return
	}
	writeJSON(w, http.StatusOK, orch.ExtractStructured(r.Context(), doc, cats))
}

type compareRequest struct {
	DrawingItems []model.ExtractedItem `json:"drawing_items"`
	BOQItems     []model.ExtractedItem `json:"boq_items"`
}

func (s *apiServer) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	engine := comparison.New(s.oracle, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens)
	result := engine.Compare(r.Context(), req.DrawingItems, req.BOQItems)
	writeJSON(w, http.StatusOK, result)
}

type priceRequest struct {
	Items     []model.ExtractedItem `json:"items"`
	PriceList string                `json:"price_list,omitempty"`
}

func (s *apiServer) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listPath := req.PriceList
	if listPath == "" {
		listPath = cfg.PriceList.Path
	}
	if listPath == "" {
		writeError(w, http.StatusBadRequest, "price_list is required")
		return
	}
	loader, err := priceListLoader(listPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, eris.ToString(err, false))
		return
	}

	engine := pricing.New(s.oracle, loader, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens)
	result, err := engine.MapToPriceList(r.Context(), req.Items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, eris.ToString(err, false))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status:  model.RunStatus(r.URL.Query().Get("status")),
		Project: r.URL.Query().Get("project"),
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, eris.ToString(err, false))
		return
	}
	if runs == nil {
		runs = []model.ReconciliationRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
