// Package domain defines core types, constants, and validation for the
// jurisearch retrieval pipeline. It acts as the validation gate at pipeline
// entry points.
package domain

import "time"

// Pipeline-wide constants. VectorSize must match the dimension the index
// collection was built with; the embedding model is asked for exactly this
// many dimensions.
const (
	Collection   = "blocs_motivation"
	VectorSize   = 256
	DefaultLimit = 10
	EmbedModel   = "text-embedding-3-large"
)

// NotProvided is the sentinel standing in for absent metadata fields.
// Every field of a normalized decision is either a real value or this.
const NotProvided = "Non renseigné"

// MaxQueryRunes bounds user queries before they reach the embedding API.
const MaxQueryRunes = 8192

// QueryEvent is published after each successful retrieval for audit and
// analytics consumers. The query text itself is deliberately not included.
type QueryEvent struct {
	QueryLen int       `json:"query_len"`
	Limit    int       `json:"limit"`
	Results  int       `json:"results"`
	TopScore float32   `json:"top_score"`
	Duration int64     `json:"duration_ms"`
	At       time.Time `json:"at"`
}
