// internal/store/memory.go
//
// In-memory session store.
// Each browser page load gets one Session holding one game.Machine; nothing
// survives a process restart.
//
// Characteristics:
//   - Sessions keyed by ID in a map guarded by an RWMutex.
//   - Get refreshes the session's last-seen time.
//   - Sweep evicts sessions idle since before a cutoff.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/solo-server/internal/game"
)

// ErrNotFound is returned by Get for unknown or evicted sessions.
var ErrNotFound = errors.New("store: session not found")

// Session binds a machine to its public ID.
type Session struct {
	ID        string
	Machine   *game.Machine
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// NewSession wraps m under id.
func NewSession(id string, m *game.Machine) *Session {
	now := time.Now()
	return &Session{ID: id, Machine: m, CreatedAt: now, lastSeen: now}
}

// LastSeen reports when the session was last fetched.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

// Store defines the session persistence interface.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID and marks it as used.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session; unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep evicts sessions not seen since cutoff and returns how many went.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)

	// Len reports the number of live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*Session // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session), now: time.Now}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunSweeper evicts sessions idle for longer than ttl every interval until
// ctx is cancelled.
func RunSweeper(ctx context.Context, st Store, ttl, interval time.Duration, onSweep func(n int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.Sweep(ctx, now.Add(-ttl))
			if err == nil && n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
