package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	r := NewRegistry()
	c := r.Counter("searches_total")
	c.Inc()
	c.Add(2)
	if c.Value() != 3 {
		t.Errorf("value: %d", c.Value())
	}
	if r.Counter("searches_total") != c {
		t.Error("same name must return same counter")
	}
}

func TestHistogram(t *testing.T) {
	r := NewRegistry()
	h := r.Histogram("search_duration_seconds")
	h.Observe(0.02)
	h.Observe(0.2)
	h.Observe(100) // above all buckets, counted only in +Inf
	if h.count != 3 {
		t.Errorf("count: %d", h.count)
	}
}

func TestHandler_Exposition(t *testing.T) {
	r := NewRegistry()
	r.Counter("searches_total").Inc()
	r.Histogram("search_duration_seconds").Observe(0.3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"# TYPE searches_total counter",
		"searches_total 1",
		"# TYPE search_duration_seconds histogram",
		`search_duration_seconds_bucket{le="+Inf"} 1`,
		"search_duration_seconds_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}
