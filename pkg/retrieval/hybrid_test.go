package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fakeVector struct {
	rows []Candidate
	err  error
}

func (f fakeVector) Search(ctx context.Context, embedding []float32, limit int) ([]Candidate, error) {
	return f.rows, f.err
}

type fakeFTS struct {
	rows []Candidate
	err  error
}

func (f fakeFTS) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	return f.rows, f.err
}

func cand(doc, chunk int64, score float64) Candidate {
	return Candidate{DocumentID: doc, ChunkID: chunk, Content: "c", RawScore: score}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRetrieveBlendsBothSources(t *testing.T) {
	// Vector: k1=0.9, k2=0.1 normalize to 1.0 and 0.0.
	// FTS:    k2=1.0, k3=0.5 normalize to 1.0 and 0.0.
	// Blend (alpha 0.6): k1=0.6, k2=0.4, k3=0.0.
	vec := fakeVector{rows: []Candidate{cand(1, 1, 0.9), cand(2, 2, 0.1)}}
	fts := fakeFTS{rows: []Candidate{cand(2, 2, 1.0), cand(3, 3, 0.5)}}

	r := NewRetriever(fakeEmbedder{}, vec, fts, 0.6, nil)
	hits, err := r.Retrieve(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(hits) != 3 {
		t.Fatalf("len(hits) = %d, want 3", len(hits))
	}

	wantScores := []struct {
		doc   int64
		score float64
	}{
		{1, 0.6},
		{2, 0.4},
		{3, 0.0},
	}
	for i, w := range wantScores {
		if hits[i].DocumentID != w.doc {
			t.Errorf("hits[%d].DocumentID = %d, want %d", i, hits[i].DocumentID, w.doc)
		}
		if !almostEqual(hits[i].Score, w.score) {
			t.Errorf("hits[%d].Score = %v, want %v", i, hits[i].Score, w.score)
		}
	}
}

func TestRetrieveDegradesWhenVectorFails(t *testing.T) {
	vec := fakeVector{err: errors.New("db down")}
	fts := fakeFTS{rows: []Candidate{cand(1, 1, 2.0), cand(2, 2, 1.0)}}

	r := NewRetriever(fakeEmbedder{}, vec, fts, 0.6, nil)
	hits, err := r.Retrieve(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want degraded success", err)
	}

	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	// FTS-only: scores carry only the (1-alpha) weight.
	if !almostEqual(hits[0].Score, 0.4) {
		t.Errorf("hits[0].Score = %v, want 0.4", hits[0].Score)
	}
}

func TestRetrieveDegradesWhenEmbeddingFails(t *testing.T) {
	vec := fakeVector{rows: []Candidate{cand(1, 1, 0.9)}}
	fts := fakeFTS{rows: []Candidate{cand(2, 2, 1.0)}}

	r := NewRetriever(fakeEmbedder{err: errors.New("provider down")}, vec, fts, 0.6, nil)
	hits, err := r.Retrieve(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(hits) != 1 || hits[0].DocumentID != 2 {
		t.Errorf("hits = %+v, want the FTS row only", hits)
	}
}

func TestRetrieveBothSourcesFail(t *testing.T) {
	r := NewRetriever(fakeEmbedder{}, fakeVector{err: errors.New("x")}, fakeFTS{err: errors.New("y")}, 0.6, nil)

	hits, err := r.Retrieve(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want nil", err)
	}
	if len(hits) != 0 {
		t.Errorf("len(hits) = %d, want 0", len(hits))
	}
}

func TestRetrieveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRetriever(fakeEmbedder{}, fakeVector{}, fakeFTS{}, 0.6, nil)
	if _, err := r.Retrieve(ctx, "q", 5); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetrieveTruncatesToK(t *testing.T) {
	fts := fakeFTS{rows: []Candidate{
		cand(1, 1, 5), cand(2, 2, 4), cand(3, 3, 3), cand(4, 4, 2), cand(5, 5, 1),
	}}
	r := NewRetriever(fakeEmbedder{}, fakeVector{}, fts, 0.6, nil)

	hits, err := r.Retrieve(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("len(hits) = %d, want 2", len(hits))
	}
}

func TestRetrieveTieBreakIsDeterministic(t *testing.T) {
	// All equal scores normalize to 1.0 each; ties order by (doc, chunk).
	fts := fakeFTS{rows: []Candidate{cand(3, 1, 1), cand(1, 2, 1), cand(1, 1, 1), cand(2, 1, 1)}}
	r := NewRetriever(fakeEmbedder{}, fakeVector{}, fts, 0.6, nil)

	hits, err := r.Retrieve(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	want := []hitKey{{1, 1}, {1, 2}, {2, 1}, {3, 1}}
	for i, w := range want {
		got := hitKey{hits[i].DocumentID, hits[i].ChunkID}
		if got != w {
			t.Errorf("hits[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestNormalizeSingletonIsOne(t *testing.T) {
	out := normalizeByKey([]Candidate{cand(1, 1, 0.42)})
	if !almostEqual(out[hitKey{1, 1}], 1.0) {
		t.Errorf("singleton normalized to %v, want 1.0", out[hitKey{1, 1}])
	}
}

func TestMergePrefersVectorMetadata(t *testing.T) {
	vecRow := Candidate{DocumentID: 1, ChunkID: 1, Title: "from vector", Content: "vec", RawScore: 0.9}
	ftsRow := Candidate{DocumentID: 1, ChunkID: 1, Title: "from fts", Content: "fts", RawScore: 1.0}

	hits := mergeAndBlend([]Candidate{vecRow}, []Candidate{ftsRow}, 0.6)

	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1 (dedup by key)", len(hits))
	}
	if hits[0].Title != "from vector" {
		t.Errorf("Title = %q, want vector metadata", hits[0].Title)
	}
	// Present in both singleton lists: both normalize to 1.0, blend is 1.0.
	if !almostEqual(hits[0].Score, 1.0) {
		t.Errorf("Score = %v, want 1.0", hits[0].Score)
	}
}
