// Package retrieval orchestrates the semantic retrieval pipeline: it
// validates a legal question, embeds it, runs nearest-neighbor search over
// the motivation-block index, and normalizes the hits into decision records
// for a display layer.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jurisearch/jurisearch/engine/domain"
	"github.com/jurisearch/jurisearch/engine/semantic"
	"github.com/jurisearch/jurisearch/pkg/fn"
)

// Embedder turns query text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs k-NN search over the motivation-block collection.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]semantic.Hit, error)
}

// Options configures the retrieval pipeline.
type Options struct {
	// Limit is the result count used when the caller passes none.
	Limit int
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{Limit: domain.DefaultLimit}
}

// Service composes embedding and search into one retrieval pipeline. It
// holds no per-query state; the connection handles live inside the injected
// collaborators and are constructed once per process.
type Service struct {
	embed  Embedder
	search Searcher
	opts   Options
	logger *slog.Logger
}

// New creates a retrieval Service.
func New(embed Embedder, search Searcher, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultLimit
	}
	return &Service{embed: embed, search: search, opts: opts, logger: logger}
}

// Retrieve runs the pipeline for one query: validate, embed, search,
// normalize. An empty result is a valid outcome, not an error. Failures
// from either remote boundary propagate unchanged; there are no retries
// and no partial results.
func (s *Service) Retrieve(ctx context.Context, query string, limit int) ([]Decision, error) {
	if err := domain.ValidateQuery(query); err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}
	if limit <= 0 {
		limit = s.opts.Limit
	}
	s.logger.Info("retrieve start", "query_len", len(query), "limit", limit)

	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}

	hits, err := s.search.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieval: search: %w", err)
	}
	// The index owns the contract of returning at most limit hits; enforce
	// it here so the display layer never sees more than it asked for.
	if len(hits) > limit {
		hits = hits[:limit]
	}

	decisions := fn.Map(hits, Normalize)
	s.logger.Info("retrieve done", "results", len(decisions))
	return decisions, nil
}
