// Offline conversation simulator. Runs the full chat pipeline against a
// small in-memory knowledge base and a canned model, so the session,
// intent, lead, and CTA behavior can be exercised without Postgres or an
// LLM endpoint.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/pkg/facts"
	"ai-assistant-be/pkg/generation"
	"ai-assistant-be/pkg/lead"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/retrieval"
	"ai-assistant-be/pkg/session"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
)

type kbChunk struct {
	docID   int64
	chunkID int64
	chunkNo int
	title   string
	content string
}

var knowledgeBase = []kbChunk{
	{1, 11, 0, "Services Overview", "We build custom AI assistants, chat automation, and retrieval pipelines for customer-facing teams."},
	{1, 12, 1, "Services Overview", "Typical engagements cover discovery, a working pilot in four weeks, and production hardening."},
	{2, 21, 0, "Pricing Guide", "Pilots start as fixed-price engagements. Production pricing depends on volume and integrations."},
	{3, 31, 0, "Onboarding", "Onboarding starts with a scoping call, then access setup, then a weekly delivery cadence."},
}

// stubEmbedder returns a placeholder vector; the stub vector source ranks
// by token overlap on the captured query text instead.
type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

type stubSource struct{}

func overlap(query, content string) float64 {
	q := strings.Fields(strings.ToLower(query))
	c := strings.ToLower(content)
	var n float64
	for _, w := range q {
		if len(w) > 3 && strings.Contains(c, w) {
			n++
		}
	}
	return n
}

var lastQuery string

func (stubSource) Search(ctx context.Context, _ []float32, limit int) ([]retrieval.Candidate, error) {
	return rank(lastQuery, limit), nil
}

type stubFTS struct{}

func (stubFTS) Search(ctx context.Context, query string, limit int) ([]retrieval.Candidate, error) {
	return rank(query, limit), nil
}

func rank(query string, limit int) []retrieval.Candidate {
	var out []retrieval.Candidate
	for _, ch := range knowledgeBase {
		score := overlap(query, ch.content+" "+ch.title)
		if score == 0 {
			continue
		}
		out = append(out, retrieval.Candidate{
			DocumentID: ch.docID,
			ChunkID:    ch.chunkID,
			ChunkNo:    ch.chunkNo,
			Title:      ch.title,
			Content:    ch.content,
			RawScore:   score,
		})
	}
	if len(out) > limit && limit > 0 {
		out = out[:limit]
	}
	return out
}

// cannedLLM replies with the first context line so answers stay grounded
// and deterministic.
type cannedLLM struct{}

func (cannedLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	for _, m := range messages {
		if m.Role == "user" && strings.HasPrefix(m.Content, "Context:") {
			for _, line := range strings.Split(m.Content, "\n") {
				line = strings.TrimSpace(line)
				if line == "" || line == "---" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "Context:") {
					continue
				}
				return line, nil
			}
		}
	}
	return "Happy to help with that.", nil
}

func (c cannedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type staticFacts struct{}

func (staticFacts) GetFacts(ctx context.Context, names []string) (map[string]facts.Fact, error) {
	return map[string]facts.Fact{
		facts.ContactEmail: {Name: facts.ContactEmail, Value: "hello@corvox.co.uk"},
		facts.ContactURL:   {Name: facts.ContactURL, Value: "https://corvox.co.uk"},
	}, nil
}

// queryCapture wraps the retriever so the stub vector source can see the
// text form of the query.
type queryCapture struct {
	inner *retrieval.Retriever
}

func (q queryCapture) Retrieve(ctx context.Context, query string, k int) ([]retrieval.Hit, error) {
	lastQuery = query
	return q.inner.Retrieve(ctx, query, k)
}

func main() {
	color.Cyan("🚀 Conversation Simulator (offline, canned model)\n")

	sysLogger := logger.NewZapLogger("simulate.log.csv", false)
	retriever := retrieval.NewRetriever(stubEmbedder{}, stubSource{}, stubFTS{}, retrieval.DefaultAlpha, nil)
	searcher := queryCapture{inner: retriever}

	generator := generation.NewGenerator(cannedLLM{}, searcher, generation.Config{
		Temperature:   0.3,
		MaxTokens:     300,
		MinSimilarity: 0.1,
	}, nil)

	store := session.NewStore(session.DefaultTTL, nil)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	go func() {
		msgs, err := pubSub.Subscribe(context.Background(), service.LeadCapturedTopic)
		if err != nil {
			return
		}
		for msg := range msgs {
			color.Magenta("\n📨 LEAD CAPTURED: %s\n", string(msg.Payload))
			msg.Ack()
		}
	}()

	chatService := service.NewChatService(
		store,
		lead.DefaultPolicy(),
		staticFacts{},
		generator,
		searcher,
		pubSub,
		retrieval.DefaultTopK,
		retrieval.DefaultMaxContextChars,
		sysLogger,
	)

	sessionID := fmt.Sprintf("sim-%d", time.Now().Unix())
	color.Yellow("Session: %s (type 'quit' to exit)\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.Set(color.FgGreen)
		fmt.Print("you> ")
		color.Unset()
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}

		res, err := chatService.Chat(context.Background(), &dto.ChatRequest{
			SessionID: sessionID,
			Message:   text,
		})
		if err != nil {
			color.Red("error: %v", err)
			continue
		}

		color.Cyan("bot> %s", res.Answer)
		color.White("     [intent=%s topic=%s turn=%d lead_complete=%v]",
			res.Intent, res.Topic, res.TurnCount, res.Lead != nil && res.Lead.Complete)
	}
}
