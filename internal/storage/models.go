package storage

// Payload is the metadata stored with every point: the owning source id and
// the original chunk text, enough to reconstruct readable context at query
// time.
type Payload struct {
	Source string
	Text   string
}

// SearchResult holds reconstructed context for a similarity search.
// Contexts is one text per matched point with non-empty text, ranked by
// similarity; Sources is the deduplicated set of contributing source ids in
// first-occurrence order. Both are non-nil.
type SearchResult struct {
	Contexts []string `json:"contexts"`
	Sources  []string `json:"sources"`
}

// payload field keys as stored in Qdrant.
const (
	payloadKeySource = "source"
	payloadKeyText   = "text"
)
