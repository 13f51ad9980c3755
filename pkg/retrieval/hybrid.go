package retrieval

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DefaultAlpha weights the vector side of the blend; (1 - alpha) goes to
// full-text. 0.6 favours semantic similarity slightly.
const DefaultAlpha = 0.6

// DefaultTopK is the fallback result size when the caller passes k <= 0.
const DefaultTopK = 5

// Retriever runs both search sources for a query and blends their rankings.
// Stateless apart from its collaborators; safe for concurrent use.
type Retriever struct {
	embedder Embedder
	vector   VectorSource
	fts      FTSSource
	alpha    float64
	logger   *zap.Logger
}

// NewRetriever wires a hybrid retriever. alpha outside (0,1] falls back to
// DefaultAlpha.
func NewRetriever(embedder Embedder, vector VectorSource, fts FTSSource, alpha float64, logger *zap.Logger) *Retriever {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		embedder: embedder,
		vector:   vector,
		fts:      fts,
		alpha:    alpha,
		logger:   logger,
	}
}

// Retrieve returns up to k hits sorted by blended score descending, ties
// broken by ascending (document id, chunk id). A failing source degrades to
// an empty list for that side; only context cancellation is returned as an
// error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Hit, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	var (
		wg      sync.WaitGroup
		vecRows []Candidate
		ftsRows []Candidate
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vecRows = r.vectorCandidates(ctx, query, k)
	}()
	go func() {
		defer wg.Done()
		rows, err := r.fts.Search(ctx, query, k)
		if err != nil {
			r.logger.Warn("full-text search failed, degrading to vector-only", zap.Error(err))
			return
		}
		ftsRows = rows
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := mergeAndBlend(vecRows, ftsRows, r.alpha)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (r *Retriever) vectorCandidates(ctx context.Context, query string, k int) []Candidate {
	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, degrading to text-only", zap.Error(err))
		return nil
	}
	rows, err := r.vector.Search(ctx, emb, k)
	if err != nil {
		r.logger.Warn("vector search failed, degrading to text-only", zap.Error(err))
		return nil
	}
	return rows
}

type hitKey struct {
	documentID int64
	chunkID    int64
}

// mergeAndBlend normalizes each list independently, unions the key sets and
// blends per-key scores. Metadata comes from the vector row when a key
// appears in both lists.
func mergeAndBlend(vecRows, ftsRows []Candidate, alpha float64) []Hit {
	vecNorm := normalizeByKey(vecRows)
	ftsNorm := normalizeByKey(ftsRows)

	meta := make(map[hitKey]Candidate, len(vecRows)+len(ftsRows))
	for _, c := range ftsRows {
		meta[key(c)] = c
	}
	for _, c := range vecRows {
		// vector rows win on conflict; their attributes are assumed denser
		meta[key(c)] = c
	}

	hits := make([]Hit, 0, len(meta))
	for k, c := range meta {
		score := alpha*vecNorm[k] + (1-alpha)*ftsNorm[k]
		hits = append(hits, Hit{
			DocumentID: c.DocumentID,
			ChunkID:    c.ChunkID,
			ChunkNo:    c.ChunkNo,
			Title:      c.Title,
			SourceURI:  c.SourceURI,
			Content:    c.Content,
			Score:      clamp01(score),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].DocumentID != hits[j].DocumentID {
			return hits[i].DocumentID < hits[j].DocumentID
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	return hits
}

// normalizeByKey min-max scales one list's raw scores to [0,1]. When every
// score is equal (singleton lists included) each normalized score is 1.0:
// an undifferentiated list still carries a real signal and must not
// collapse to zero.
func normalizeByKey(rows []Candidate) map[hitKey]float64 {
	out := make(map[hitKey]float64, len(rows))
	if len(rows) == 0 {
		return out
	}
	lo, hi := rows[0].RawScore, rows[0].RawScore
	for _, c := range rows[1:] {
		if c.RawScore < lo {
			lo = c.RawScore
		}
		if c.RawScore > hi {
			hi = c.RawScore
		}
	}
	span := hi - lo
	for _, c := range rows {
		if span <= 0 {
			out[key(c)] = 1.0
			continue
		}
		out[key(c)] = (c.RawScore - lo) / span
	}
	return out
}

func key(c Candidate) hitKey {
	return hitKey{documentID: c.DocumentID, chunkID: c.ChunkID}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
