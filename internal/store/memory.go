// apps/go-server/internal/store/memory.go
//
// In-memory session store.
// Each player session owns one round engine; nothing survives a restart.
//
// Characteristics:
//   - Sessions keyed by ID in a map, guarded by an RWMutex.
//   - Get and Touch refresh LastSeen; Sweep evicts sessions idle longer than a TTL.
//   - RunJanitor sweeps periodically until its context is cancelled.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ojisan/apps/go-server/internal/cue"
	"github.com/robalobadob/ojisan/apps/go-server/internal/game"
)

// ErrNotFound is returned by Get for an unknown session ID.
var ErrNotFound = errors.New("session not found")

// Mode distinguishes how a session's board is seeded.
type Mode string

const (
	ModeRandom Mode = "random"
	ModeDaily  Mode = "daily"
)

// Session is one player's board plus the cue fan-out its listeners attach to.
type Session struct {
	ID        string
	Mode      Mode
	Date      string // daily sessions only
	Engine    *game.Engine
	Cues      *cue.Broadcaster
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store defines the persistence interface for sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID and marks it as seen.
	// Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Session, error)

	// Touch marks a session as seen without fetching it, for clients that
	// stay on one long-lived connection. Returns ErrNotFound if missing.
	Touch(ctx context.Context, id string) error

	// Delete removes a session; missing IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep evicts sessions not seen since now-ttl and returns how many.
	Sweep(now time.Time, ttl time.Duration) int

	// Len reports the number of live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session), now: time.Now}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.LastSeen.IsZero() {
		s.LastSeen = m.now()
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.LastSeen = m.now()
	return s, nil
}

func (m *memory) Touch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.LastSeen = m.now()
	return nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunJanitor sweeps st every interval until ctx is done.
func RunJanitor(ctx context.Context, st Store, interval, ttl time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := st.Sweep(now, ttl); n > 0 {
				log.Info().Int("evicted", n).Int("live", st.Len()).Msg("idle sessions swept")
			}
		}
	}
}
