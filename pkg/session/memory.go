package session

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const (
	defaultCleanupInterval = time.Minute
	defaultMaxSessions     = 100_000
)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCleanupInterval sets how often expired sessions are purged.
// A non-positive interval disables the janitor.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(m *MemoryStore) {
		m.cleanupInterval = d
	}
}

// WithMaxSessions caps the number of stored sessions. The least recently
// used session is evicted when the cap is reached. Zero means unlimited.
func WithMaxSessions(n int) MemoryOption {
	return func(m *MemoryStore) {
		m.maxSessions = n
	}
}

// MemoryStore keeps sessions in process memory with LRU eviction and a
// background janitor for expired entries. Stored sessions are copies, so
// callers never share state through the store.
type MemoryStore struct {
	byID     map[string]*list.Element
	byToken  map[string]string
	eviction *list.List
	done     chan struct{}

	cleanupInterval time.Duration
	maxSessions     int

	mu     sync.Mutex
	closed bool
}

// NewMemoryStore creates an in-memory store.
//
// Example:
//
//	store := session.NewMemoryStore(
//	    session.WithCleanupInterval(30 * time.Second),
//	    session.WithMaxSessions(10_000),
//	)
//	defer store.Close()
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		byID:            make(map[string]*list.Element),
		byToken:         make(map[string]string),
		eviction:        list.New(),
		done:            make(chan struct{}),
		cleanupInterval: defaultCleanupInterval,
		maxSessions:     defaultMaxSessions,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Create persists a new session.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.maxSessions > 0 && len(m.byID) >= m.maxSessions {
		if oldest := m.eviction.Back(); oldest != nil {
			m.removeElement(oldest)
		}
	}

	m.store(s)
	return nil
}

// Get retrieves a session by token. Accessing a session marks it as
// recently used.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	elem := m.byID[id]
	s := elem.Value.(*Session)

	if s.IsExpired() {
		m.removeElement(elem)
		return nil, ErrExpired
	}

	m.eviction.MoveToFront(elem)
	return s.Clone(), nil
}

// Update replaces the stored copy. A changed token re-keys the session.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	elem, ok := m.byID[s.ID]
	if !ok {
		return ErrNotFound
	}
	m.removeElement(elem)
	m.store(s)
	return nil
}

// Delete removes a session by ID. Missing sessions are not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if elem, ok := m.byID[id]; ok {
		m.removeElement(elem)
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Close stops the janitor. Close is idempotent.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

// store inserts a copy of s at the front. Caller must hold the mutex.
func (m *MemoryStore) store(s *Session) {
	c := s.Clone()
	c.dirty, c.isNew, c.rotate = false, false, false
	m.byID[c.ID] = m.eviction.PushFront(c)
	m.byToken[c.Token] = c.ID
}

// removeElement drops a session from every index. Caller must hold the mutex.
func (m *MemoryStore) removeElement(elem *list.Element) {
	m.eviction.Remove(elem)
	s := elem.Value.(*Session)
	delete(m.byID, s.ID)
	delete(m.byToken, s.Token)
}

func (m *MemoryStore) janitor() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

// deleteExpired removes expired sessions from back to front.
func (m *MemoryStore) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if s := elem.Value.(*Session); now.After(s.ExpiresAt) {
			m.removeElement(elem)
		}
		elem = prev
	}
}

var _ Store = (*MemoryStore)(nil)
