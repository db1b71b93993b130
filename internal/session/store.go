package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lvyanru/weather-apiserver/internal/domain"
	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

// Config controls session lifetime and background eviction.
type Config struct {
	TTL             time.Duration // inactivity window before a session expires
	CleanupInterval time.Duration // janitor period; 0 disables the janitor
}

// entry holds one session and its history under a per-key lock, so updates
// to the same id serialize while unrelated sessions proceed in parallel.
type entry struct {
	mu      sync.Mutex
	session entity.Session
	history []entity.Message
}

// Store is the in-memory SessionStore implementation. It is the only shared
// mutable resource in the subsystem; everything it hands out is a value copy.
// Expired sessions are treated as absent on access and reaped by a janitor
// goroutine, so eviction is best-effort rather than real-time.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl    time.Duration
	clock  Clock
	logger *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewStore creates a store and starts the eviction janitor when a cleanup
// interval is configured. Close stops the janitor.
func NewStore(cfg Config, clock Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = SystemClock()
	}
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     cfg.TTL,
		clock:   clock,
		logger:  logger,
		done:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go s.janitor(cfg.CleanupInterval)
	}
	return s
}

// GetOrCreate returns the live session for sessionID, creating it atomically
// if it is unknown or expired. Concurrent calls with the same id observe the
// same winning session.
func (s *Store) GetOrCreate(sessionID, userID string) (entity.Session, error) {
	now := s.clock.Now()

	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if ok {
		e.mu.Lock()
		if !e.session.IsExpired(s.ttl, now) {
			sess := e.session
			e.mu.Unlock()
			return sess, nil
		}
		e.mu.Unlock()
	}

	fresh, err := entity.NewSession(sessionID, userID, now)
	if err != nil {
		return entity.Session{}, domain.NewInvalidInputError("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the write lock: another caller may have created or
	// replaced the entry while we built the candidate.
	if e, ok := s.entries[sessionID]; ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.session.IsExpired(s.ttl, now) {
			return e.session, nil
		}
		e.session = fresh
		e.history = nil
		return fresh, nil
	}

	s.entries[sessionID] = &entry{session: fresh}
	return fresh, nil
}

// Get returns the session, or not-found if it is unknown or expired.
func (s *Store) Get(sessionID string) (entity.Session, error) {
	e, err := s.live(sessionID)
	if err != nil {
		return entity.Session{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.IsExpired(s.ttl, s.clock.Now()) {
		return entity.Session{}, domain.NewNotFoundError("session", sessionID)
	}
	return e.session, nil
}

// Update atomically applies a pure transformation to the session. The
// session identity and creation time survive the mutator, and LastActivity
// never moves backwards.
func (s *Store) Update(sessionID string, mutate func(entity.Session) entity.Session) (entity.Session, error) {
	e, err := s.live(sessionID)
	if err != nil {
		return entity.Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.session
	if prev.IsExpired(s.ttl, s.clock.Now()) {
		return entity.Session{}, domain.NewNotFoundError("session", sessionID)
	}

	next := mutate(prev)
	next.SessionID = prev.SessionID
	next.CreatedAt = prev.CreatedAt
	if next.LastActivity.Before(prev.LastActivity) {
		next.LastActivity = prev.LastActivity
	}
	e.session = next
	return next, nil
}

// AppendHistory appends messages to the session's append-only history.
func (s *Store) AppendHistory(sessionID string, msgs ...entity.Message) error {
	e, err := s.live(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, msgs...)
	return nil
}

// History returns a copy of the session's message history in append order.
// A session with no turns yet yields an empty slice.
func (s *Store) History(sessionID string) ([]entity.Message, error) {
	e, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]entity.Message, len(e.history))
	copy(out, e.history)
	return out, nil
}

// Delete removes the session and its history, reporting whether one existed.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	return ok
}

// EvictExpired removes every expired session and returns how many went away.
func (s *Store) EvictExpired() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.entries {
		e.mu.Lock()
		expired := e.session.IsExpired(s.ttl, now)
		e.mu.Unlock()
		if expired {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of stored sessions, live or not yet evicted.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the eviction janitor. The store stays usable afterwards;
// eviction just becomes lazy-only.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// live fetches the entry for sessionID or reports not-found. Expiry is
// checked by the callers that hold the entry lock.
func (s *Store) live(sessionID string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.NewNotFoundError("session", sessionID)
	}
	return e, nil
}

func (s *Store) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.EvictExpired(); n > 0 && s.logger != nil {
				s.logger.Debug("evicted expired sessions", "count", n)
			}
		}
	}
}
