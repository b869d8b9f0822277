package presence

import (
	"cmp"
	"fmt"
	"github.com/samber/lo"
	"slices"
	"sync"
	"time"
)

// Registry maps connection ids to sessions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	nextSeq  uint64
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Add registers a new session under its default display name.
func (r *Registry) Add(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return Session{}, fmt.Errorf("add %q: %w", id, ErrDuplicateSession)
	}

	r.nextSeq++
	session := &Session{
		ID:          id,
		DisplayName: DefaultDisplayName(id),
		JoinedAt:    time.Now().UTC(),
		seq:         r.nextSeq,
	}
	r.sessions[id] = session
	return *session, nil
}

// Remove deletes the session and returns its last state.
func (r *Registry) Remove(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("remove %q: %w", id, ErrUnknownSession)
	}
	delete(r.sessions, id)
	return *session, nil
}

// Rename sets the display name. Empty and duplicate names are accepted.
func (r *Registry) Rename(id, name string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("rename %q: %w", id, ErrUnknownSession)
	}
	session.DisplayName = name
	return *session, nil
}

func (r *Registry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Snapshot returns the current roster in join order.
func (r *Registry) Snapshot() []RosterEntry {
	r.mu.RLock()
	sessions := lo.Values(r.sessions)
	entries := lo.Map(sessions, func(s *Session, _ int) Session { return *s })
	r.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Session) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return lo.Map(entries, func(s Session, _ int) RosterEntry {
		return s.Entry()
	})
}
