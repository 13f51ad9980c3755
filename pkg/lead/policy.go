package lead

import (
	"ai-assistant-be/pkg/intent"
	"ai-assistant-be/pkg/session"
)

// Policy defaults
const (
	DefaultCooldownTurns = 2
	DefaultMaxAttempts   = 3
)

// Policy decides whether a call-to-action (a qualifying question) may be
// appended to an answer. State lives on the session as two counters; the
// policy itself is stateless and safe to share.
type Policy struct {
	CooldownTurns int
	MaxAttempts   int
}

// DefaultPolicy returns the standard CTA gate: at most 3 offers per
// session, at least 2 turns apart.
func DefaultPolicy() Policy {
	return Policy{CooldownTurns: DefaultCooldownTurns, MaxAttempts: DefaultMaxAttempts}
}

// CanOffer is true iff the attempt budget is not exhausted and at least
// CooldownTurns turns have passed since the last offer.
func (p Policy) CanOffer(s *session.Session) bool {
	if s.CTAAttempts >= p.MaxAttempts {
		return false
	}
	return s.TurnCount-s.CTALastTurn >= p.CooldownTurns
}

// MarkUsed records that a CTA was just offered.
func (p Policy) MarkUsed(s *session.Session) {
	s.CTALastTurn = s.TurnCount
	s.CTAAttempts++
}

// ShowsInterest is the orchestrator predicate for when a qualifying
// question is even worth considering.
func ShowsInterest(k intent.Kind, t intent.Topic) bool {
	switch k {
	case intent.KindLead, intent.KindContact:
		return true
	case intent.KindInfo:
		return t == intent.TopicPricing || t == intent.TopicServices
	}
	return false
}

var slotQuestions = map[string]string{
	session.SlotName:          "May I take your name?",
	session.SlotCompany:       "Which company are you with?",
	session.SlotEmail:         "What's the best email to reach you on?",
	session.SlotPhone:         "What's the best phone number for a callback?",
	session.SlotPreferredTime: "When is a good time for us to contact you?",
}

// NextQuestion returns the qualifying question for the first unfilled slot
// in fixed priority order. ok is false when every slot is filled.
func NextQuestion(ls session.LeadSlots) (field, question string, ok bool) {
	for _, f := range session.AllFields() {
		if ls.Value(f) == "" {
			return f, slotQuestions[f], true
		}
	}
	return "", "", false
}
