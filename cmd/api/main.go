// Package main implements the jurisearch API server: the HTTP boundary the
// display layer talks to.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jurisearch/jurisearch/engine/domain"
	"github.com/jurisearch/jurisearch/engine/embedding"
	"github.com/jurisearch/jurisearch/engine/retrieval"
	"github.com/jurisearch/jurisearch/engine/semantic"
	"github.com/jurisearch/jurisearch/pkg/metrics"
	"github.com/jurisearch/jurisearch/pkg/mid"
	"github.com/jurisearch/jurisearch/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

// Config holds all environment-based configuration, read once at startup.
type Config struct {
	Port         string
	OpenAIKey    string
	OpenAIURL    string
	EmbedRPS     float64
	QdrantAddr   string
	QdrantAPIKey string
	QdrantTLS    bool
	Collection   string
	CORSOrigin   string
	NATSURL      string
}

func loadConfig() Config {
	rps, _ := strconv.ParseFloat(envOr("EMBED_RPS", "5"), 64)
	return Config{
		Port:         envOr("PORT", "8080"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIURL:    envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		EmbedRPS:     rps,
		QdrantAddr:   envOr("QDRANT_URL", "localhost:6334"),
		QdrantAPIKey: os.Getenv("QDRANT_API_KEY"),
		QdrantTLS:    envOr("QDRANT_TLS", "false") == "true",
		Collection:   envOr("QDRANT_COLLECTION", domain.Collection),
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
		NATSURL:      os.Getenv("NATS_URL"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

const queryEventSubject = "jurisearch.query.v1"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant; a missing collection aborts startup ---
	store, err := semantic.New(ctx, semantic.Config{
		Addr:       cfg.QdrantAddr,
		APIKey:     cfg.QdrantAPIKey,
		TLS:        cfg.QdrantTLS,
		Collection: cfg.Collection,
		Dims:       domain.VectorSize,
	})
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	// --- Embedding client ---
	embedder := embedding.New(embedding.Config{
		BaseURL: cfg.OpenAIURL,
		APIKey:  cfg.OpenAIKey,
		Model:   domain.EmbedModel,
		Dims:    domain.VectorSize,
		RPS:     cfg.EmbedRPS,
	})

	// --- Retrieval pipeline ---
	svc := retrieval.New(embedder, store, retrieval.DefaultOptions(), logger)

	// --- Optional NATS audit stream ---
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL, nats.Name("jurisearch-api"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
	}

	reg := metrics.NewRegistry()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("POST /api/search", handleSearch(svc, nc, reg, logger))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("jurisearch-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "collection", cfg.Collection)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Retriever is the slice of the retrieval service the handler needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]retrieval.Decision, error)
}

// SearchRequest is the JSON body for POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchResult is one decision in the response, with the derived lookup URL.
type SearchResult struct {
	retrieval.Decision
	URL string `json:"url,omitempty"`
}

// SearchResponse is the JSON response for POST /api/search.
type SearchResponse struct {
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

func handleSearch(svc Retriever, nc *nats.Conn, reg *metrics.Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reg.Counter("searches_total").Inc()
		start := time.Now()

		decisions, err := svc.Retrieve(r.Context(), req.Query, req.Limit)
		reg.Histogram("search_duration_seconds").Observe(time.Since(start).Seconds())
		if err != nil {
			reg.Counter("search_errors_total").Inc()
			status, msg := errorStatus(err)
			if status >= http.StatusInternalServerError {
				logger.Error("search failed", "err", err)
			}
			writeError(w, status, msg)
			return
		}

		if nc != nil {
			publishQueryEvent(r.Context(), nc, req, decisions, time.Since(start), logger)
		}

		results := make([]SearchResult, len(decisions))
		for i, d := range decisions {
			url, _ := d.URL()
			results[i] = SearchResult{Decision: d, URL: url}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{Count: len(results), Results: results})
	}
}

// errorStatus maps pipeline errors to HTTP statuses. Remote failures are
// bad-gateway: the problem is an upstream dependency, not this server.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest, "query is required"
	case errors.Is(err, domain.ErrQueryTooLong):
		return http.StatusBadRequest, "query too long"
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrIndexUnavailable):
		return http.StatusBadGateway, "upstream service unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// publishQueryEvent emits the audit event; failures are logged, never
// surfaced to the caller.
func publishQueryEvent(ctx context.Context, nc *nats.Conn, req SearchRequest, decisions []retrieval.Decision, took time.Duration, logger *slog.Logger) {
	ev := domain.QueryEvent{
		QueryLen: len(req.Query),
		Limit:    req.Limit,
		Results:  len(decisions),
		Duration: took.Milliseconds(),
		At:       time.Now().UTC(),
	}
	if len(decisions) > 0 {
		ev.TopScore = decisions[0].Score
	}
	if err := natsutil.Publish(ctx, nc, queryEventSubject, ev); err != nil {
		logger.Warn("query event publish failed", "err", err)
	}
}
