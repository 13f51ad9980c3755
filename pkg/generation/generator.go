// Package generation builds the grounded answer for one chat turn:
// optional self-query rewrite, hybrid retrieval, context assembly, one
// model call, and post-processing of the model output.
package generation

import (
	"context"
	"fmt"
	"strings"

	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/retrieval"
	"ai-assistant-be/pkg/textutil"

	"go.uber.org/zap"
)

// Searcher is the retrieval side the generator consumes.
type Searcher interface {
	Retrieve(ctx context.Context, query string, k int) ([]retrieval.Hit, error)
}

// Config carries the generation knobs resolved from configuration.
type Config struct {
	Temperature     float64
	MaxTokens       int
	MinSimilarity   float64
	EnableSelfQuery bool
}

// Options are per-call overrides passed down from the API surface.
type Options struct {
	K               int
	MaxContextChars int
	Debug           bool
	ShowCitations   bool
}

// Citation points a user at the snippet behind an answer.
type Citation struct {
	Title   string `json:"title"`
	ChunkNo int    `json:"chunk_no"`
}

// Debug is the retrieval trace attached when debugging is requested.
type Debug struct {
	RewrittenQuery string                  `json:"rewritten_query"`
	Used           []retrieval.UsedSnippet `json:"used"`
	TopSimilarity  float64                 `json:"top_similarity"`
	LowConfidence  bool                    `json:"low_confidence"`
}

// Result is the generated answer plus optional extras.
type Result struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations,omitempty"`
	Debug     *Debug     `json:"debug,omitempty"`
}

type Generator struct {
	provider llm.LLMProvider
	searcher Searcher
	cfg      Config
	logger   *zap.Logger
}

func NewGenerator(provider llm.LLMProvider, searcher Searcher, cfg Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		provider: provider,
		searcher: searcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// Answer runs the full pipeline for one question. Retrieval problems
// degrade to an empty context and a generic answer; only a failure of the
// generation collaborator itself (or cancellation) is returned as an error.
func (g *Generator) Answer(ctx context.Context, question string, opts Options) (*Result, error) {
	rewritten := g.selfQueryRewrite(ctx, question)

	hits, err := g.searcher.Retrieve(ctx, rewritten, opts.K)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	topSim := retrieval.TopSimilarity(hits)
	lowConfidence := topSim < g.cfg.MinSimilarity

	contextText, used := retrieval.MakeContext(hits, opts.MaxContextChars)
	if strings.TrimSpace(contextText) == "" {
		res := &Result{Answer: fallbackAnswer}
		if opts.Debug {
			res.Debug = &Debug{RewrittenQuery: rewritten, Used: used, TopSimilarity: topSim}
		}
		return res, nil
	}

	if lowConfidence {
		contextText = lowConfidencePreamble + contextText
	}

	raw, err := g.provider.Chat(ctx, buildPrompt(contextText, question),
		llm.WithTemperature(g.cfg.Temperature),
		llm.WithMaxTokens(g.cfg.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer := textutil.StripSourceTokens(raw)

	res := &Result{Answer: answer}
	if opts.ShowCitations {
		for _, u := range used {
			if u.Title == "" {
				continue
			}
			res.Citations = append(res.Citations, Citation{Title: u.Title, ChunkNo: u.ChunkNo})
		}
	}
	if opts.Debug {
		res.Debug = &Debug{
			RewrittenQuery: rewritten,
			Used:           used,
			TopSimilarity:  topSim,
			LowConfidence:  lowConfidence,
		}
	}
	return res, nil
}

// selfQueryRewrite turns a conversational question into a crisp search
// query. Disabled or failing rewrites fall back to the original question.
func (g *Generator) selfQueryRewrite(ctx context.Context, question string) string {
	if !g.cfg.EnableSelfQuery {
		return question
	}
	out, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: selfQueryInstruction},
		{Role: "user", Content: question},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(64))
	if err != nil {
		g.logger.Debug("self-query rewrite failed, using original question", zap.Error(err))
		return question
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return question
	}
	return out
}
