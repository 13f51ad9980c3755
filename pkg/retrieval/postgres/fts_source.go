package postgres

import (
	"context"

	"ai-assistant-be/pkg/retrieval"

	"gorm.io/gorm"
)

type FTSSource struct {
	db *gorm.DB
}

func NewFTSSource(db *gorm.DB) *FTSSource {
	return &FTSSource{db: db}
}

var _ retrieval.FTSSource = (*FTSSource)(nil)

// Search ranks chunks with Postgres full-text search.
// websearch_to_tsquery parses natural language input (quotes, -negation);
// ts_rank is higher-is-better, which is what the blender expects.
func (s *FTSSource) Search(ctx context.Context, query string, limit int) ([]retrieval.Candidate, error) {
	if limit <= 0 {
		limit = retrieval.DefaultTopK
	}

	var rows []chunkRow
	err := s.db.WithContext(ctx).Raw(`
		WITH q AS (
			SELECT websearch_to_tsquery('english', ?) AS tsq
		)
		SELECT
			chunks.id AS chunk_id,
			documents.id AS document_id,
			chunks.chunk_no AS chunk_no,
			documents.title AS title,
			COALESCE(documents.source_uri, '') AS source_uri,
			chunks.content AS content,
			ts_rank(to_tsvector('english', chunks.content), (SELECT tsq FROM q)) AS raw_score
		FROM chunks
		JOIN documents ON documents.id = chunks.document_id
		WHERE to_tsvector('english', chunks.content) @@ (SELECT tsq FROM q)
		ORDER BY raw_score DESC
		LIMIT ?`, query, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCandidates(rows), nil
}
