package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long an idle session survives before the sweeper
// removes it.
const DefaultTTL = 60 * time.Minute

// Store keeps session state in memory, keyed by session id. Mutations for a
// given id are serialized through a per-entry mutex; different ids never
// block each other. State is not persisted: a restart loses all sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	logger   *zap.Logger
}

type entry struct {
	mu   sync.Mutex
	sess *Session
	// gone is set under mu when the sweeper removes the entry, so a
	// writer that fetched the entry before removal does not mutate an
	// orphan.
	gone bool
}

// NewStore creates a store with the given idle TTL. A non-positive ttl
// falls back to DefaultTTL.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		logger:   logger,
	}
}

// Get returns a snapshot of the session, or false if it does not exist.
// The snapshot is a copy; mutating it has no effect on the store.
func (st *Store) Get(id string) (Session, bool) {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return Session{}, false
	}
	return snapshot(e.sess), true
}

// Upsert applies mutate to the session for id, creating it on first
// contact. The mutation runs under the entry lock and must stay short:
// external I/O never happens inside it. Returns a post-mutation snapshot.
func (st *Store) Upsert(id string, mutate func(*Session)) Session {
	now := time.Now().UTC()

	for {
		st.mu.Lock()
		e, ok := st.sessions[id]
		if !ok {
			e = &entry{sess: &Session{ID: id, CreatedAt: now}}
			st.sessions[id] = e
		}
		st.mu.Unlock()

		e.mu.Lock()
		if e.gone {
			// The sweeper removed this entry between the map fetch and
			// the entry lock. Retry against the map; the swept entry is
			// no longer reachable from it.
			e.mu.Unlock()
			continue
		}
		if mutate != nil {
			mutate(e.sess)
		}
		e.sess.UpdatedAt = time.Now().UTC()
		snap := snapshot(e.sess)
		e.mu.Unlock()
		return snap
	}
}

// SweepExpired drops every session whose last update predates now - TTL.
// Returns how many sessions were removed.
func (st *Store) SweepExpired(now time.Time) int {
	cutoff := now.Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, e := range st.sessions {
		e.mu.Lock()
		stale := e.sess.UpdatedAt.Before(cutoff)
		if stale {
			e.gone = true
		}
		e.mu.Unlock()
		if stale {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		st.logger.Info("swept expired sessions",
			zap.Int("removed", removed),
			zap.Int("remaining", len(st.sessions)))
	}
	return removed
}

// RunSweeper sweeps on the given interval until ctx is cancelled.
func (st *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.SweepExpired(now)
		}
	}
}

// Len reports how many sessions are currently held.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func snapshot(s *Session) Session {
	out := *s
	out.Turns = make([]Turn, len(s.Turns))
	copy(out.Turns, s.Turns)
	return out
}
