package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/retrieval"
)

type scriptedLLM struct {
	rewrite string
	answer  string
	err     error

	chatCalls []string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	sys := history[0].Content
	s.chatCalls = append(s.chatCalls, sys)
	if strings.Contains(sys, "search query") {
		return s.rewrite, nil
	}
	return s.answer, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type stubSearcher struct {
	hits      []retrieval.Hit
	err       error
	gotQuery  string
	gotK      int
	callCount int
}

func (s *stubSearcher) Retrieve(ctx context.Context, query string, k int) ([]retrieval.Hit, error) {
	s.gotQuery = query
	s.gotK = k
	s.callCount++
	return s.hits, s.err
}

func someHits() []retrieval.Hit {
	return []retrieval.Hit{
		{DocumentID: 1, ChunkID: 1, ChunkNo: 0, Title: "Services", Content: "We build assistants.", Score: 0.8},
		{DocumentID: 2, ChunkID: 4, ChunkNo: 1, Title: "Pricing", Content: "Pilots are fixed price.", Score: 0.6},
	}
}

func TestAnswerHappyPath(t *testing.T) {
	provider := &scriptedLLM{answer: "We build AI assistants."}
	searcher := &stubSearcher{hits: someHits()}

	g := NewGenerator(provider, searcher, Config{MinSimilarity: 0.3}, nil)
	res, err := g.Answer(context.Background(), "what do you do", Options{K: 5, ShowCitations: true})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if res.Answer != "We build AI assistants." {
		t.Errorf("Answer = %q", res.Answer)
	}
	if searcher.gotK != 5 {
		t.Errorf("k = %d, want 5", searcher.gotK)
	}
	if len(res.Citations) != 2 {
		t.Errorf("len(Citations) = %d, want 2", len(res.Citations))
	}
	if res.Citations[0].Title != "Services" {
		t.Errorf("Citations[0].Title = %q", res.Citations[0].Title)
	}
}

func TestAnswerSelfQueryRewrite(t *testing.T) {
	provider := &scriptedLLM{rewrite: "services capabilities", answer: "ok"}
	searcher := &stubSearcher{hits: someHits()}

	g := NewGenerator(provider, searcher, Config{EnableSelfQuery: true}, nil)
	if _, err := g.Answer(context.Background(), "so umm what is it you folks actually do?", Options{}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if searcher.gotQuery != "services capabilities" {
		t.Errorf("retrieval query = %q, want the rewritten form", searcher.gotQuery)
	}
}

func TestAnswerEmptyContextUsesFallback(t *testing.T) {
	provider := &scriptedLLM{answer: "should not be called"}
	searcher := &stubSearcher{hits: nil}

	g := NewGenerator(provider, searcher, Config{}, nil)
	res, err := g.Answer(context.Background(), "anything", Options{Debug: true})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if res.Answer != fallbackAnswer {
		t.Errorf("Answer = %q, want the fallback", res.Answer)
	}
	// The model is never consulted when there is nothing to ground on.
	if len(provider.chatCalls) != 0 {
		t.Errorf("chat calls = %d, want 0", len(provider.chatCalls))
	}
	if res.Debug == nil {
		t.Error("Debug missing despite Options.Debug")
	}
}

func TestAnswerRetrievalErrorIsFatal(t *testing.T) {
	provider := &scriptedLLM{answer: "x"}
	searcher := &stubSearcher{err: errors.New("ctx torn down")}

	g := NewGenerator(provider, searcher, Config{}, nil)
	if _, err := g.Answer(context.Background(), "q", Options{}); err == nil {
		t.Fatal("Answer() error = nil, want retrieval error")
	}
}

func TestAnswerProviderErrorIsFatal(t *testing.T) {
	provider := &scriptedLLM{err: errors.New("model down")}
	searcher := &stubSearcher{hits: someHits()}

	g := NewGenerator(provider, searcher, Config{}, nil)
	if _, err := g.Answer(context.Background(), "q", Options{}); err == nil {
		t.Fatal("Answer() error = nil, want provider error")
	}
}

func TestAnswerStripsSourceTokens(t *testing.T) {
	provider := &scriptedLLM{answer: "[Services · #0] We build assistants."}
	searcher := &stubSearcher{hits: someHits()}

	g := NewGenerator(provider, searcher, Config{}, nil)
	res, err := g.Answer(context.Background(), "q", Options{})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if res.Answer != "We build assistants." {
		t.Errorf("Answer = %q, want headers stripped", res.Answer)
	}
}

func TestAnswerLowConfidenceDebugFlag(t *testing.T) {
	provider := &scriptedLLM{answer: "tentative"}
	searcher := &stubSearcher{hits: []retrieval.Hit{
		{DocumentID: 1, ChunkID: 1, Content: "weakly related", Score: 0.1},
	}}

	g := NewGenerator(provider, searcher, Config{MinSimilarity: 0.35}, nil)
	res, err := g.Answer(context.Background(), "q", Options{Debug: true})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if res.Debug == nil || !res.Debug.LowConfidence {
		t.Errorf("Debug = %+v, want LowConfidence=true", res.Debug)
	}
}

func TestRewriteFailureFallsBackToOriginal(t *testing.T) {
	provider := &scriptedLLM{answer: "ok"}
	searcher := &stubSearcher{hits: someHits()}

	// Rewrite enabled but the model returns empty for the rewrite turn.
	provider.rewrite = "   "
	g := NewGenerator(provider, searcher, Config{EnableSelfQuery: true}, nil)
	if _, err := g.Answer(context.Background(), "original question", Options{}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if searcher.gotQuery != "original question" {
		t.Errorf("retrieval query = %q, want the original", searcher.gotQuery)
	}
}
