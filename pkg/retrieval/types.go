// Package retrieval merges vector-similarity and full-text rankings from
// two independent sources into one blended, deduplicated top-k result.
package retrieval

import "context"

// Hit is one ranked knowledge-base chunk. Identity is the composite
// (DocumentID, ChunkID) pair; Score is the blended relevance in [0,1].
type Hit struct {
	DocumentID int64   `json:"document_id"`
	ChunkID    int64   `json:"chunk_id"`
	ChunkNo    int     `json:"chunk_no"`
	Title      string  `json:"title,omitempty"`
	SourceURI  string  `json:"source_uri,omitempty"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// Candidate is a raw row from one search source before normalization.
// RawScore is higher-is-better within its own list: vector sources are
// expected to convert distance to similarity before returning.
type Candidate struct {
	DocumentID int64
	ChunkID    int64
	ChunkNo    int
	Title      string
	SourceURI  string
	Content    string
	RawScore   float64
}

// VectorSource ranks candidates by embedding similarity.
type VectorSource interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]Candidate, error)
}

// FTSSource ranks candidates by full-text relevance.
type FTSSource interface {
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// Embedder turns query text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
