package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/facts"
	"ai-assistant-be/pkg/generation"
	"ai-assistant-be/pkg/intent"
	"ai-assistant-be/pkg/lead"
	"ai-assistant-be/pkg/retrieval"
	"ai-assistant-be/pkg/session"
	"ai-assistant-be/pkg/textutil"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// LeadCapturedTopic is the internal bus topic for completed leads.
const LeadCapturedTopic = "LEAD_CAPTURED"

var (
	ErrEmptySessionID = errors.New("session_id is required")
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message exceeds the 4000 character limit")
)

const maxMessageChars = 4000

// recentTurnWindow is how many prior turns are replayed into the prompt.
const recentTurnWindow = 4

// errorTurnPlaceholder is stored as the assistant turn when generation
// fails, so history stays role-alternating.
const errorTurnPlaceholder = "Sorry, I ran into a problem answering that. Please try again."

// Answerer is the generation side the orchestrator consumes.
type Answerer interface {
	Answer(ctx context.Context, question string, opts generation.Options) (*generation.Result, error)
}

// Searcher exposes raw hybrid retrieval for the search endpoint.
type Searcher interface {
	Retrieve(ctx context.Context, query string, k int) ([]retrieval.Hit, error)
}

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	Search(ctx context.Context, query string, k int) (*dto.SearchResponse, error)
}

type chatService struct {
	store     *session.Store
	policy    lead.Policy
	facts     facts.Lookup
	answerer  Answerer
	searcher  Searcher
	publisher message.Publisher
	defaultK  int
	maxChars  int
	log       logger.ILogger
}

func NewChatService(
	store *session.Store,
	policy lead.Policy,
	factsLookup facts.Lookup,
	answerer Answerer,
	searcher Searcher,
	publisher message.Publisher,
	defaultK, maxContextChars int,
	log logger.ILogger,
) IChatService {
	if defaultK <= 0 {
		defaultK = retrieval.DefaultTopK
	}
	if maxContextChars <= 0 {
		maxContextChars = retrieval.DefaultMaxContextChars
	}
	return &chatService{
		store:     store,
		policy:    policy,
		facts:     factsLookup,
		answerer:  answerer,
		searcher:  searcher,
		publisher: publisher,
		defaultK:  defaultK,
		maxChars:  maxContextChars,
		log:       log,
	}
}

// Chat runs one conversational turn: classify, harvest lead slots, record
// the user turn, build a grounded answer (or a canned smalltalk reply),
// apply the follow-up question policy, and record the assistant turn.
// Input errors are returned before any session mutation.
func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	text := strings.TrimSpace(req.Message)
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > maxMessageChars {
		return nil, ErrMessageTooLong
	}

	kind, topic := intent.Classify(text)
	harvested := lead.Extract(text)

	// Record the user turn and fold in whatever slots the message yielded.
	cur := s.store.Upsert(sessionID, func(sess *session.Session) {
		sess.AppendTurn(session.RoleUser, text)
		if changed := sess.Lead.Merge(harvested); len(changed) > 0 {
			s.log.Info("chat", "lead slots updated", map[string]interface{}{
				"session_id": sessionID,
				"fields":     changed,
			})
		}
		if topic != intent.TopicNone {
			sess.Topic = string(topic)
		}
	})

	var answer string
	if kind == intent.KindSmalltalk {
		answer = intent.SmalltalkReply(text)
	} else {
		question := s.augmentQuestion(ctx, text, kind, topic, cur)

		k := req.K
		if k <= 0 {
			k = s.defaultK
		}
		res, err := s.answerer.Answer(ctx, question, generation.Options{
			K:               k,
			MaxContextChars: s.maxChars,
			Debug:           req.Debug,
			ShowCitations:   req.Citations,
		})
		if err != nil {
			s.store.Upsert(sessionID, func(sess *session.Session) {
				sess.AppendTurn(session.RoleAssistant, errorTurnPlaceholder)
			})
			s.log.Error("chat", "answer generation failed", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			return nil, fmt.Errorf("generate reply: %w", err)
		}
		return s.finishTurn(ctx, sessionID, kind, topic, res.Answer, res)
	}

	return s.finishTurn(ctx, sessionID, kind, topic, answer, nil)
}

// finishTurn appends the follow-up question when policy allows, records the
// assistant turn, refreshes the summary, and emits the lead event once the
// slots complete.
func (s *chatService) finishTurn(ctx context.Context, sessionID string, kind intent.Kind, topic intent.Topic, answer string, res *generation.Result) (*dto.ChatResponse, error) {
	var emit *dto.LeadCapturedMessage

	final := s.store.Upsert(sessionID, func(sess *session.Session) {
		if lead.ShowsInterest(kind, topic) && s.policy.CanOffer(sess) {
			if _, question, ok := lead.NextQuestion(sess.Lead); ok {
				answer = answer + "\n\n" + question
				s.policy.MarkUsed(sess)
			}
		}

		sess.AppendTurn(session.RoleAssistant, answer)

		// Summary refresh is bookkeeping; a failure must not fail the turn.
		_ = session.RecomputeSummary(sess)

		if sess.Lead.Complete() && !sess.LeadCaptured {
			sess.LeadCaptured = true
			emit = &dto.LeadCapturedMessage{
				LeadID:        uuid.NewString(),
				SessionID:     sess.ID,
				Name:          sess.Lead.Name,
				Company:       sess.Lead.Company,
				Email:         sess.Lead.Email,
				Phone:         sess.Lead.Phone,
				PreferredTime: sess.Lead.PreferredTime,
				Summary:       sess.Summary,
			}
		}
	})

	if emit != nil {
		s.publishLead(emit)
	}

	resp := &dto.ChatResponse{
		SessionID: final.ID,
		Answer:    answer,
		Intent:    string(kind),
		Topic:     string(topic),
		TurnCount: final.TurnCount,
		Lead: &dto.LeadStateDTO{
			Name:          final.Lead.Name,
			Company:       final.Lead.Company,
			Email:         final.Lead.Email,
			Phone:         final.Lead.Phone,
			PreferredTime: final.Lead.PreferredTime,
			Complete:      final.Lead.Complete(),
		},
	}
	if res != nil {
		for _, c := range res.Citations {
			resp.Citations = append(resp.Citations, dto.CitationDTO{Title: c.Title, ChunkNo: c.ChunkNo})
		}
		if res.Debug != nil {
			d := &dto.ChatDebugDTO{
				RewrittenQuery: res.Debug.RewrittenQuery,
				TopSimilarity:  res.Debug.TopSimilarity,
				LowConfidence:  res.Debug.LowConfidence,
			}
			for _, u := range res.Debug.Used {
				d.Used = append(d.Used, dto.UsedSnippetDTO{Title: u.Title, ChunkNo: u.ChunkNo, Score: u.Score})
			}
			resp.Debug = d
		}
	}
	return resp, nil
}

// augmentQuestion prefixes the raw question with a [Context] block: known
// company facts, captured lead state, and a steer for pricing asks. The
// block gives the model grounding that retrieval alone can't supply.
func (s *chatService) augmentQuestion(ctx context.Context, text string, kind intent.Kind, topic intent.Topic, cur session.Session) string {
	var b strings.Builder
	b.WriteString("[Context]\n")

	known, err := s.facts.GetFacts(ctx, facts.ContactAndPricingNames())
	if err != nil {
		// Degraded: answer from retrieval alone.
		s.log.Warn("chat", "facts lookup failed", map[string]interface{}{"error": err.Error()})
		known = map[string]facts.Fact{}
	}
	writeFact := func(label, name string) {
		if f, ok := known[name]; ok && f.Value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, f.Value)
		}
	}
	writeFact("Company email", facts.ContactEmail)
	writeFact("Company phone", facts.ContactPhone)
	writeFact("Website", facts.ContactURL)
	writeFact("Office address", facts.OfficeAddress)
	if topic == intent.TopicPricing {
		writeFact("Pricing overview", facts.PricingOverview)
		writeFact("Pricing note", facts.PricingBullet)
		b.WriteString("If exact prices are not in the sources, describe the engagement model and invite the visitor to get a tailored quote.\n")
	}

	if cur.Lead.Name != "" || cur.Lead.Company != "" {
		fmt.Fprintf(&b, "Visitor: %s", cur.Lead.Name)
		if cur.Lead.Company != "" {
			fmt.Fprintf(&b, " (%s)", cur.Lead.Company)
		}
		b.WriteString("\n")
	}
	if cur.Summary != "" {
		fmt.Fprintf(&b, "Conversation so far: %s\n", cur.Summary)
	}

	// The snapshot already holds the current user turn; everything before
	// it is the exchange history worth replaying.
	if turns := cur.RecentTurns(recentTurnWindow + 1); len(turns) > 1 {
		b.WriteString("Recent conversation:\n")
		for _, turn := range turns[:len(turns)-1] {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, textutil.Truncate(turn.Content, 160))
		}
	}

	b.WriteString("\n[Question]\n")
	b.WriteString(text)
	return b.String()
}

// publishLead pushes the completed lead onto the internal bus. Delivery is
// best effort; a bus failure is logged and the turn still succeeds.
func (s *chatService) publishLead(payload *dto.LeadCapturedMessage) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("chat", "marshal lead payload failed", map[string]interface{}{"error": err.Error()})
		return
	}
	msg := message.NewMessage(uuid.NewString(), data)
	if err := s.publisher.Publish(LeadCapturedTopic, msg); err != nil {
		s.log.Error("chat", "publish lead failed", map[string]interface{}{
			"lead_id": payload.LeadID,
			"error":   err.Error(),
		})
		return
	}
	s.log.Info("chat", "lead captured", map[string]interface{}{
		"lead_id":    payload.LeadID,
		"session_id": payload.SessionID,
	})
}

// Search exposes the hybrid retriever directly for tuning and diagnostics.
func (s *chatService) Search(ctx context.Context, query string, k int) (*dto.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyMessage
	}
	if k <= 0 {
		k = s.defaultK
	}

	hits, err := s.searcher.Retrieve(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	resp := &dto.SearchResponse{Query: query, Results: make([]dto.SearchResultDTO, 0, len(hits))}
	for _, h := range hits {
		resp.Results = append(resp.Results, dto.SearchResultDTO{
			DocumentID: h.DocumentID,
			ChunkID:    h.ChunkID,
			ChunkNo:    h.ChunkNo,
			Title:      h.Title,
			SourceURI:  h.SourceURI,
			Content:    h.Content,
			Score:      h.Score,
		})
	}
	return resp, nil
}
