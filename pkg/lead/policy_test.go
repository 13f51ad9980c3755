package lead

import (
	"testing"

	"ai-assistant-be/pkg/intent"
	"ai-assistant-be/pkg/session"
)

func TestPolicyCanOffer(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		sess session.Session
		want bool
	}{
		{
			name: "fresh session",
			sess: session.Session{TurnCount: 2},
			want: true,
		},
		{
			name: "attempts exhausted",
			sess: session.Session{TurnCount: 20, CTAAttempts: 3, CTALastTurn: 10},
			want: false,
		},
		{
			name: "inside cooldown",
			sess: session.Session{TurnCount: 5, CTAAttempts: 1, CTALastTurn: 4},
			want: false,
		},
		{
			name: "cooldown boundary",
			sess: session.Session{TurnCount: 6, CTAAttempts: 1, CTALastTurn: 4},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.CanOffer(&tt.sess); got != tt.want {
				t.Errorf("CanOffer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicyMarkUsed(t *testing.T) {
	p := DefaultPolicy()
	s := session.Session{TurnCount: 4}

	p.MarkUsed(&s)

	if s.CTAAttempts != 1 {
		t.Errorf("CTAAttempts = %d, want 1", s.CTAAttempts)
	}
	if s.CTALastTurn != 4 {
		t.Errorf("CTALastTurn = %d, want 4", s.CTALastTurn)
	}
	if p.CanOffer(&s) {
		t.Error("CanOffer() right after an offer should be false")
	}
}

func TestShowsInterest(t *testing.T) {
	tests := []struct {
		kind  intent.Kind
		topic intent.Topic
		want  bool
	}{
		{intent.KindLead, intent.TopicNone, true},
		{intent.KindContact, intent.TopicEmail, true},
		{intent.KindInfo, intent.TopicPricing, true},
		{intent.KindInfo, intent.TopicServices, true},
		{intent.KindInfo, intent.TopicNone, false},
		{intent.KindSmalltalk, intent.TopicNone, false},
		{intent.KindOther, intent.TopicNone, false},
	}

	for _, tt := range tests {
		if got := ShowsInterest(tt.kind, tt.topic); got != tt.want {
			t.Errorf("ShowsInterest(%q, %q) = %v, want %v", tt.kind, tt.topic, got, tt.want)
		}
	}
}

func TestNextQuestion(t *testing.T) {
	t.Run("empty slots ask for name first", func(t *testing.T) {
		field, question, ok := NextQuestion(session.LeadSlots{})
		if !ok {
			t.Fatal("NextQuestion() ok = false, want true")
		}
		if field != session.SlotName {
			t.Errorf("field = %q, want %q", field, session.SlotName)
		}
		if question == "" {
			t.Error("question is empty")
		}
	})

	t.Run("skips filled slots", func(t *testing.T) {
		field, _, ok := NextQuestion(session.LeadSlots{Name: "Anna", Company: "Acme"})
		if !ok {
			t.Fatal("NextQuestion() ok = false, want true")
		}
		if field != session.SlotEmail {
			t.Errorf("field = %q, want %q", field, session.SlotEmail)
		}
	})

	t.Run("all slots filled", func(t *testing.T) {
		_, _, ok := NextQuestion(session.LeadSlots{
			Name: "Anna", Company: "Acme", Email: "a@acme.com",
			Phone: "+44 7700 900123", PreferredTime: "tomorrow",
		})
		if ok {
			t.Error("NextQuestion() ok = true, want false")
		}
	})
}
