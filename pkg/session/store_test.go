package session

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStoreUpsertCreatesOnFirstContact(t *testing.T) {
	st := NewStore(DefaultTTL, nil)

	snap := st.Upsert("s1", func(s *Session) {
		s.AppendTurn(RoleUser, "hello")
	})

	if snap.ID != "s1" {
		t.Errorf("ID = %q, want %q", snap.ID, "s1")
	}
	if snap.TurnCount != 1 {
		t.Errorf("TurnCount = %d, want 1", snap.TurnCount)
	}
	if len(snap.Turns) != 1 || snap.Turns[0].Content != "hello" {
		t.Errorf("Turns = %+v, want one 'hello' turn", snap.Turns)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	st := NewStore(DefaultTTL, nil)
	st.Upsert("s1", func(s *Session) {
		s.AppendTurn(RoleUser, "original")
	})

	snap, ok := st.Get("s1")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}

	snap.Turns[0].Content = "mutated"
	snap.Lead.Name = "mutated"

	again, _ := st.Get("s1")
	if again.Turns[0].Content != "original" {
		t.Errorf("snapshot mutation leaked into store: %q", again.Turns[0].Content)
	}
	if again.Lead.Name != "" {
		t.Errorf("snapshot lead mutation leaked into store: %q", again.Lead.Name)
	}
}

func TestStoreGetMissing(t *testing.T) {
	st := NewStore(DefaultTTL, nil)
	if _, ok := st.Get("nope"); ok {
		t.Error("Get() ok = true for missing id")
	}
}

func TestTurnMemoryLimit(t *testing.T) {
	st := NewStore(DefaultTTL, nil)

	for i := 0; i < TurnMemoryLimit+5; i++ {
		content := fmt.Sprintf("turn-%d", i)
		st.Upsert("s1", func(s *Session) {
			s.AppendTurn(RoleUser, content)
		})
	}

	snap, _ := st.Get("s1")
	if len(snap.Turns) != TurnMemoryLimit {
		t.Errorf("len(Turns) = %d, want %d", len(snap.Turns), TurnMemoryLimit)
	}
	// Oldest turns dropped, newest kept.
	if snap.Turns[len(snap.Turns)-1].Content != fmt.Sprintf("turn-%d", TurnMemoryLimit+4) {
		t.Errorf("newest turn = %q", snap.Turns[len(snap.Turns)-1].Content)
	}
	if snap.Turns[0].Content != "turn-5" {
		t.Errorf("oldest kept turn = %q, want %q", snap.Turns[0].Content, "turn-5")
	}
	// Counter keeps the true total.
	if snap.TurnCount != TurnMemoryLimit+5 {
		t.Errorf("TurnCount = %d, want %d", snap.TurnCount, TurnMemoryLimit+5)
	}
}

func TestRecentTurnsRoundTrip(t *testing.T) {
	s := &Session{}
	s.AppendTurn(RoleUser, "do you integrate with slack")
	s.AppendTurn(RoleAssistant, "yes, via the events api")

	got := s.RecentTurns(2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Role != RoleUser || got[0].Content != "do you integrate with slack" {
		t.Errorf("first turn = %+v", got[0])
	}
	if got[1].Role != RoleAssistant || got[1].Content != "yes, via the events api" {
		t.Errorf("second turn = %+v", got[1])
	}

	// n past the history clamps; non-positive n yields nothing.
	if got := s.RecentTurns(10); len(got) != 2 {
		t.Errorf("clamped len = %d, want 2", len(got))
	}
	if got := s.RecentTurns(0); got != nil {
		t.Errorf("RecentTurns(0) = %+v, want nil", got)
	}

	// The returned slice is a copy.
	got[0].Content = "mutated"
	if s.Turns[0].Content != "do you integrate with slack" {
		t.Errorf("mutation leaked into session history: %q", s.Turns[0].Content)
	}
}

func TestStoreConcurrentUpserts(t *testing.T) {
	st := NewStore(DefaultTTL, nil)

	const writers = 16
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				st.Upsert("shared", func(s *Session) {
					s.TurnCount++
				})
			}
		}()
	}
	wg.Wait()

	snap, _ := st.Get("shared")
	if snap.TurnCount != writers*perWriter {
		t.Errorf("TurnCount = %d, want %d", snap.TurnCount, writers*perWriter)
	}
}

func TestSweepExpired(t *testing.T) {
	st := NewStore(30*time.Minute, nil)

	st.Upsert("old", nil)
	st.Upsert("fresh", nil)

	// Backdate the idle session past the TTL.
	st.mu.Lock()
	st.sessions["old"].sess.UpdatedAt = time.Now().UTC().Add(-1 * time.Hour)
	st.mu.Unlock()

	removed := st.SweepExpired(time.Now().UTC())

	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := st.Get("old"); ok {
		t.Error("expired session still present")
	}
	if _, ok := st.Get("fresh"); !ok {
		t.Error("fresh session was swept")
	}
}

func TestUpsertAfterSweepCreatesFreshEntry(t *testing.T) {
	st := NewStore(30*time.Minute, nil)
	st.Upsert("s1", func(s *Session) {
		s.AppendTurn(RoleUser, "stale turn")
	})

	// Keep a handle on the entry the way a writer that fetched it just
	// before the sweep would.
	st.mu.Lock()
	old := st.sessions["s1"]
	old.sess.UpdatedAt = time.Now().UTC().Add(-1 * time.Hour)
	st.mu.Unlock()

	st.SweepExpired(time.Now().UTC())

	old.mu.Lock()
	gone := old.gone
	old.mu.Unlock()
	if !gone {
		t.Fatal("swept entry not marked gone")
	}

	snap := st.Upsert("s1", func(s *Session) {
		s.AppendTurn(RoleUser, "fresh turn")
	})
	if snap.TurnCount != 1 || snap.Turns[0].Content != "fresh turn" {
		t.Errorf("post-sweep session = %+v, want a fresh one", snap)
	}

	// The orphaned entry never absorbs the write.
	old.mu.Lock()
	defer old.mu.Unlock()
	if len(old.sess.Turns) != 1 || old.sess.Turns[0].Content != "stale turn" {
		t.Errorf("orphan mutated: %+v", old.sess.Turns)
	}
}

func TestLeadSlotsMerge(t *testing.T) {
	ls := LeadSlots{Name: "Anna"}

	changed := ls.Merge(LeadSlots{Name: "Anna", Company: "Acme", Email: "a@acme.com"})

	if len(changed) != 2 {
		t.Fatalf("changed = %v, want 2 fields", changed)
	}
	if ls.Company != "Acme" || ls.Email != "a@acme.com" {
		t.Errorf("merged slots = %+v", ls)
	}

	// Empty update fields never erase captured values.
	changed = ls.Merge(LeadSlots{})
	if len(changed) != 0 {
		t.Errorf("changed = %v, want none", changed)
	}
	if ls.Name != "Anna" {
		t.Errorf("Name = %q, want %q", ls.Name, "Anna")
	}

	// A different non-empty value overwrites (last write wins).
	changed = ls.Merge(LeadSlots{Email: "anna@acme.com"})
	if len(changed) != 1 || ls.Email != "anna@acme.com" {
		t.Errorf("changed = %v, Email = %q", changed, ls.Email)
	}
}

func TestLeadSlotsComplete(t *testing.T) {
	tests := []struct {
		name string
		ls   LeadSlots
		want bool
	}{
		{"empty", LeadSlots{}, false},
		{"name only", LeadSlots{Name: "A"}, false},
		{"name company no reach", LeadSlots{Name: "A", Company: "B"}, false},
		{"with email", LeadSlots{Name: "A", Company: "B", Email: "a@b.c"}, true},
		{"with phone", LeadSlots{Name: "A", Company: "B", Phone: "+44 7700 900123"}, true},
		{"reach without company", LeadSlots{Name: "A", Email: "a@b.c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ls.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecomputeSummary(t *testing.T) {
	s := &Session{}
	if err := RecomputeSummary(s); err != ErrNoTurns {
		t.Errorf("err = %v, want ErrNoTurns", err)
	}

	s.AppendTurn(RoleUser, "tell me about your retrieval pipeline")
	s.AppendTurn(RoleAssistant, "sure, here it is")

	if err := RecomputeSummary(s); err != nil {
		t.Fatalf("RecomputeSummary() error = %v", err)
	}
	if s.Summary != "tell me about your retrieval pipeline" {
		t.Errorf("Summary = %q", s.Summary)
	}
	if s.Topic != "general" {
		t.Errorf("Topic = %q, want %q", s.Topic, "general")
	}
}
