package session

import (
	"errors"
	"time"

	"ai-assistant-be/pkg/textutil"
)

// TurnMemoryLimit caps how many turns a session keeps in memory. The
// monotonic TurnCount keeps growing past it.
const TurnMemoryLimit = 12

const summaryMaxChars = 150

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Lead slot field names (closed set)
const (
	SlotName          = "name"
	SlotCompany       = "company"
	SlotEmail         = "email"
	SlotPhone         = "phone"
	SlotPreferredTime = "preferred_time"
)

// Turn is a single message in a conversation. Immutable once appended.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadSlots holds the contact/qualification fields harvested so far.
// Empty string means "not captured yet".
type LeadSlots struct {
	Name          string `json:"name,omitempty"`
	Company       string `json:"company,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
}

// Value returns the slot value for a field name from the closed set.
func (ls *LeadSlots) Value(field string) string {
	switch field {
	case SlotName:
		return ls.Name
	case SlotCompany:
		return ls.Company
	case SlotEmail:
		return ls.Email
	case SlotPhone:
		return ls.Phone
	case SlotPreferredTime:
		return ls.PreferredTime
	}
	return ""
}

func (ls *LeadSlots) set(field, value string) {
	switch field {
	case SlotName:
		ls.Name = value
	case SlotCompany:
		ls.Company = value
	case SlotEmail:
		ls.Email = value
	case SlotPhone:
		ls.Phone = value
	case SlotPreferredTime:
		ls.PreferredTime = value
	}
}

// AllFields lists the closed slot set in its fixed priority order.
func AllFields() []string {
	return []string{SlotName, SlotCompany, SlotEmail, SlotPhone, SlotPreferredTime}
}

// Merge applies extracted updates with last-write-wins-if-different
// semantics: empty updates are no-ops, and a slot is only overwritten by a
// non-empty, different value. Returns the field names that changed.
func (ls *LeadSlots) Merge(upd LeadSlots) []string {
	var changed []string
	for _, f := range AllFields() {
		v := upd.Value(f)
		if v == "" || v == ls.Value(f) {
			continue
		}
		ls.set(f, v)
		changed = append(changed, f)
	}
	return changed
}

// Complete reports whether the lead is worth handing to sales: name and
// company captured, plus at least one way to reach the person.
func (ls *LeadSlots) Complete() bool {
	return ls.Name != "" && ls.Company != "" && (ls.Email != "" || ls.Phone != "")
}

// Session is the per-conversation state. All mutation goes through
// Store.Upsert, which serializes writers per session id.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Turns     []Turn `json:"turns"`
	TurnCount int    `json:"turn_count"`

	Summary string    `json:"summary"`
	Topic   string    `json:"topic"`
	Lead    LeadSlots `json:"lead"`

	CTAAttempts int `json:"cta_attempts"`
	CTALastTurn int `json:"cta_last_turn"`

	// LeadCaptured flags that the completed lead was already handed off,
	// so later turns don't emit it again.
	LeadCaptured bool `json:"lead_captured"`
}

// AppendTurn records a message, dropping the oldest turn once the bounded
// history is full. TurnCount never shrinks.
func (s *Session) AppendTurn(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, CreatedAt: time.Now().UTC()})
	if len(s.Turns) > TurnMemoryLimit {
		s.Turns = append(s.Turns[:0], s.Turns[len(s.Turns)-TurnMemoryLimit:]...)
	}
	s.TurnCount++
}

// RecentTurns returns the last n turns in insertion order.
func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if n > len(s.Turns) {
		n = len(s.Turns)
	}
	out := make([]Turn, n)
	copy(out, s.Turns[len(s.Turns)-n:])
	return out
}

// LastUserText returns the content of the most recent user turn.
func (s *Session) LastUserText() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i].Content
		}
	}
	return ""
}

// ErrNoTurns means there is nothing to summarize yet.
var ErrNoTurns = errors.New("session has no turns")

// RecomputeSummary refreshes the rolling summary from the latest user turn.
// Bookkeeping only: callers are expected to discard the error when a missing
// summary must not fail an otherwise successful turn.
func RecomputeSummary(s *Session) error {
	if len(s.Turns) == 0 {
		return ErrNoTurns
	}
	last := s.LastUserText()
	if last == "" {
		s.Summary = "-"
	} else {
		s.Summary = textutil.Truncate(last, summaryMaxChars)
	}
	if s.Topic == "" {
		s.Topic = "general"
	}
	return nil
}
