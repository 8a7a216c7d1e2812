// Package main implements a one-shot CLI display layer: it reads a legal
// question, runs the retrieval pipeline, and renders the matching decisions.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jurisearch/jurisearch/engine/domain"
	"github.com/jurisearch/jurisearch/engine/embedding"
	"github.com/jurisearch/jurisearch/engine/retrieval"
	"github.com/jurisearch/jurisearch/engine/semantic"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	limit := flag.Int("limit", domain.DefaultLimit, "maximum number of decisions to return")
	asJSON := flag.Bool("json", false, "emit raw JSON instead of formatted text")
	flag.Parse()

	logLevel := slog.LevelWarn
	if os.Getenv("DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	query := strings.Join(flag.Args(), " ")
	if query == "" {
		// No args: read the question from stdin.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read stdin:", err)
			os.Exit(1)
		}
		query = strings.TrimSpace(string(data))
	}

	ctx := context.Background()

	store, err := semantic.New(ctx, semantic.Config{
		Addr:       envOr("QDRANT_URL", "localhost:6334"),
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		TLS:        envOr("QDRANT_TLS", "false") == "true",
		Collection: envOr("QDRANT_COLLECTION", domain.Collection),
		Dims:       domain.VectorSize,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}
	defer store.Close()

	embedder := embedding.New(embedding.Config{
		BaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   domain.EmbedModel,
		Dims:    domain.VectorSize,
	})

	svc := retrieval.New(embedder, store, retrieval.DefaultOptions(), logger)

	decisions, err := svc.Retrieve(ctx, query, *limit)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			fmt.Fprintln(os.Stderr, "usage: search [flags] <question juridique>")
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "search:", err)
		os.Exit(1)
	}

	if *asJSON {
		json.NewEncoder(os.Stdout).Encode(decisions)
		return
	}
	render(os.Stdout, decisions)
}

// render prints the same fields the web display shows, one block per
// decision, nearest first.
func render(w io.Writer, decisions []retrieval.Decision) {
	if len(decisions) == 0 {
		fmt.Fprintln(w, "Aucun résultat trouvé")
		return
	}
	for i, d := range decisions {
		fmt.Fprintf(w, "--- Décision #%d — score %.4f ---\n", i+1, d.Score)
		fmt.Fprintf(w, "Date:      %s\n", d.Date)
		fmt.Fprintf(w, "Numéro:    %s\n", d.Number)
		fmt.Fprintf(w, "Chambre:   %s\n", d.Chamber)
		fmt.Fprintf(w, "Solution:  %s\n", d.Solution)
		fmt.Fprintf(w, "Thèmes:    %s\n", d.Themes)
		if d.Summary != domain.NotProvided {
			fmt.Fprintf(w, "Résumé:    %s\n", d.Summary)
		}
		if url, ok := d.URL(); ok {
			fmt.Fprintf(w, "Lien:      %s\n", url)
		}
		if len(d.Related) > 0 {
			fmt.Fprintln(w, "Jurisprudences proches:")
			for _, rc := range d.Related {
				if rc.CaseNumber != "" {
					fmt.Fprintf(w, "  - %s (n° %s)\n", rc.Title, rc.CaseNumber)
				} else {
					fmt.Fprintf(w, "  - %s\n", rc.Title)
				}
			}
		}
		fmt.Fprintln(w)
	}
}
