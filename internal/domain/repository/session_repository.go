package repository

import (
	"sync"

	"codeduel/internal/common"
	"codeduel/internal/domain/model"
)

// SessionRepository is the in-process match registry. Callbacks run under a
// lock private to the addressed session, so all mutations of one session are
// serialized: a check-then-set like "first passing submission wins the round"
// is safe even when both players submit simultaneously. Callers must not do
// slow work (subprocess execution in particular) inside a callback.
type SessionRepository interface {
	Create(s *model.Session)
	// View runs fn with read access to the session.
	View(id string, fn func(*model.Session)) error
	// Update runs fn with exclusive access; an error from fn is returned
	// unchanged.
	Update(id string, fn func(*model.Session) error) error
	Count() int
}

type sessionEntry struct {
	mu      sync.Mutex
	session *model.Session
}

// MemorySessionRepository holds every session for the lifetime of the
// process. There is no deletion path; sessions die with the process.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*sessionEntry)}
}

func (r *MemorySessionRepository) Create(s *model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = &sessionEntry{session: s}
}

func (r *MemorySessionRepository) lookup(id string) (*sessionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, common.Errorf("session %q: %w", id, common.ErrSessionNotFound)
	}
	return e, nil
}

func (r *MemorySessionRepository) View(id string, fn func(*model.Session)) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	return nil
}

func (r *MemorySessionRepository) Update(id string, fn func(*model.Session) error) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

func (r *MemorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
