// Package postgres implements the retrieval search sources on top of a
// Postgres knowledge store: pgvector cosine similarity for the vector side
// and websearch_to_tsquery/ts_rank for the full-text side.
package postgres

import (
	"context"

	"ai-assistant-be/pkg/retrieval"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type VectorSource struct {
	db *gorm.DB
}

func NewVectorSource(db *gorm.DB) *VectorSource {
	return &VectorSource{db: db}
}

var _ retrieval.VectorSource = (*VectorSource)(nil)

type chunkRow struct {
	ChunkID    int64
	DocumentID int64
	ChunkNo    int
	Title      string
	SourceURI  string
	Content    string
	RawScore   float64
}

// Search ranks chunks by cosine similarity. pgvector's `<=>` operator is
// cosine distance, so similarity is 1 - distance; higher is better, which
// is what the blender expects.
func (s *VectorSource) Search(ctx context.Context, embedding []float32, limit int) ([]retrieval.Candidate, error) {
	if limit <= 0 {
		limit = retrieval.DefaultTopK
	}

	queryVector := pgvector.NewVector(embedding)

	var rows []chunkRow
	err := s.db.WithContext(ctx).
		Table("chunks").
		Select(`chunks.id AS chunk_id,
			documents.id AS document_id,
			chunks.chunk_no AS chunk_no,
			documents.title AS title,
			COALESCE(documents.source_uri, '') AS source_uri,
			chunks.content AS content,
			1 - (chunks.embedding <=> ?) AS raw_score`, queryVector).
		Joins("JOIN documents ON documents.id = chunks.document_id").
		Order(gorm.Expr("chunks.embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCandidates(rows), nil
}

func toCandidates(rows []chunkRow) []retrieval.Candidate {
	out := make([]retrieval.Candidate, len(rows))
	for i, r := range rows {
		out[i] = retrieval.Candidate{
			DocumentID: r.DocumentID,
			ChunkID:    r.ChunkID,
			ChunkNo:    r.ChunkNo,
			Title:      r.Title,
			SourceURI:  r.SourceURI,
			Content:    r.Content,
			RawScore:   r.RawScore,
		}
	}
	return out
}
