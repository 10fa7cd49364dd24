// Package httpadapter exposes the ingestion, search, and answer pipeline
// over a stdlib HTTP mux.
package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ragline/docqa/internal/core/domain"
	"github.com/ragline/docqa/internal/core/ports"
	"github.com/ragline/docqa/internal/observability/metrics"
)

const serviceName = "docqa-api"

type Router struct {
	ingest  ports.DocumentIngestor
	search  ports.SearchService
	answers ports.AnswerService
	corpus  ports.CorpusIndex
	models  ports.Embedder
	metrics *metrics.PipelineMetrics
	log     *slog.Logger
	opts    Options
}

type Options struct {
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxInFlight     int
	BackpressureMax time.Duration
}

func NewRouter(
	ingest ports.DocumentIngestor,
	search ports.SearchService,
	answers ports.AnswerService,
	corpus ports.CorpusIndex,
	models ports.Embedder,
	m *metrics.PipelineMetrics,
	log *slog.Logger,
	opts Options,
) *Router {
	if log == nil {
		log = slog.Default()
	}
	if opts.BackpressureMax <= 0 {
		opts.BackpressureMax = 2 * time.Second
	}
	return &Router{
		ingest:  ingest,
		search:  search,
		answers: answers,
		corpus:  corpus,
		models:  models,
		metrics: m,
		log:     log,
		opts:    opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/models", rt.modelInfo)
	mux.HandleFunc("/v1/documents", rt.addDocuments)
	mux.HandleFunc("/v1/documents/text", rt.addDocumentText)
	mux.HandleFunc("/v1/search", rt.searchDocuments)
	mux.HandleFunc("/v1/answers", rt.generateAnswer)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.BackpressureMax)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	handler = accessLogMiddleware(handler, rt.log, rt.metrics, serviceName)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": rt.corpus.Len(),
	})
}

func (rt *Router) modelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, rt.models.ModelInfo())
}

type documentRequest struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Source   string            `json:"source"`
	DocType  string            `json:"doc_type"`
	Metadata map[string]string `json:"metadata"`
}

func (rt *Router) addDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var reqs []documentRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	docs := make([]domain.Document, len(reqs))
	for i, req := range reqs {
		docs[i] = domain.Document{
			ID:       req.ID,
			Text:     req.Text,
			Source:   req.Source,
			DocType:  req.DocType,
			Metadata: req.Metadata,
		}
	}

	if err := rt.ingest.AddDocuments(r.Context(), docs); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.SetCorpusSize(rt.corpus.Len())
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"indexed":     len(docs),
		"corpus_size": rt.corpus.Len(),
	})
}

func (rt *Router) addDocumentText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	doc, err := rt.ingest.AddDocument(r.Context(), req.Text, req.DocType, req.Source, req.Metadata)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.SetCorpusSize(rt.corpus.Len())
	}
	writeJSON(w, http.StatusCreated, doc)
}

type searchRequest struct {
	Query   string   `json:"query"`
	TopK    int      `json:"top_k"`
	Alpha   *float64 `json:"alpha"`
	Mode    string   `json:"mode"`
	Explain bool     `json:"explain"`
}

func (rt *Router) searchDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = "hybrid"
	}
	alpha := -1.0
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	start := time.Now()
	payload, err := rt.runSearch(r, mode, req, alpha)
	if rt.metrics != nil {
		rt.metrics.ObserveSearch(serviceName, mode, time.Since(start), err)
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) runSearch(r *http.Request, mode string, req searchRequest, alpha float64) (any, error) {
	ctx := r.Context()
	switch mode {
	case "dense":
		results, err := rt.search.DenseSearch(ctx, req.Query, req.TopK)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mode": mode, "results": results}, nil
	case "sparse":
		results, err := rt.search.SparseSearch(ctx, req.Query, req.TopK)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mode": mode, "results": results}, nil
	case "hybrid":
		results, err := rt.search.HybridSearch(ctx, req.Query, req.TopK, alpha)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mode": mode, "results": results}, nil
	case "expanded":
		result, err := rt.search.SearchWithExpansion(ctx, req.Query, req.TopK)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mode": mode, "results": result.Results, "queries": result.Queries}, nil
	case "reranked":
		results, err := rt.search.SearchWithReranking(ctx, req.Query, req.TopK, req.Explain)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mode": mode, "results": results}, nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("unknown search mode %q", mode))
	}
}

func (rt *Router) generateAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result := rt.answers.GenerateAnswer(r.Context(), req.Question)
	if rt.metrics != nil {
		rt.metrics.ObserveAnswer(result.ConfidenceScore, result.GenerationTime)
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
