package semantic

// Hit is a single similarity search result: a stored record's decoded
// metadata payload paired with its score. Hits come back nearest-first;
// the score range depends on the collection's distance metric and is not
// interpreted here.
type Hit struct {
	ID      string         `json:"id"`
	Score   float32        `json:"score"`
	Payload map[string]any `json:"payload"`
}
