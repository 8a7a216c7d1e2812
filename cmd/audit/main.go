// Package main implements the query audit consumer: it subscribes to the
// jurisearch query event stream and logs one line per search.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jurisearch/jurisearch/engine/domain"
	"github.com/jurisearch/jurisearch/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

const queryEventSubject = "jurisearch.query.v1"

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	nc, err := nats.Connect(envOr("NATS_URL", nats.DefaultURL), nats.Name("jurisearch-audit"))
	if err != nil {
		logger.Error("nats connect failed", "err", err)
		os.Exit(1)
	}
	defer nc.Close()

	sub, err := natsutil.Subscribe(nc, queryEventSubject, func(_ context.Context, ev domain.QueryEvent) {
		logger.Info("query",
			"query_len", ev.QueryLen,
			"limit", ev.Limit,
			"results", ev.Results,
			"top_score", ev.TopScore,
			"duration_ms", ev.Duration,
			"at", ev.At,
		)
	})
	if err != nil {
		logger.Error("subscribe failed", "err", err)
		os.Exit(1)
	}
	defer sub.Unsubscribe()

	logger.Info("audit consumer started", "subject", queryEventSubject)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("shutting down")
}
