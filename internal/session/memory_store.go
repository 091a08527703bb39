package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory session store suitable for development and
// tests. Expired sessions are reaped by a background goroutine.
type MemoryStore struct {
	sessions sync.Map
	stopChan chan struct{}
	wg       sync.WaitGroup
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{stopChan: make(chan struct{})}
	store.wg.Add(1)
	go store.reap()
	return store
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	value, ok := s.sessions.Load(id)
	if !ok {
		return nil, ErrNotFound
	}

	entry := value.(*memoryEntry)
	if entry.expiresAt.Before(time.Now()) {
		s.sessions.Delete(id)
		return nil, ErrExpired
	}
	return entry.session, nil
}

func (s *MemoryStore) Set(ctx context.Context, id string, sess *Session, ttl time.Duration) error {
	s.sessions.Store(id, &memoryEntry{session: sess, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}

// Close stops the reaper and drops all sessions.
func (s *MemoryStore) Close() error {
	close(s.stopChan)
	s.wg.Wait()
	s.sessions.Range(func(key, _ interface{}) bool {
		s.sessions.Delete(key)
		return true
	})
	return nil
}

// Count returns the number of live sessions, for tests.
func (s *MemoryStore) Count() int {
	count := 0
	s.sessions.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

func (s *MemoryStore) reap() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			now := time.Now()
			s.sessions.Range(func(key, value interface{}) bool {
				if value.(*memoryEntry).expiresAt.Before(now) {
					s.sessions.Delete(key)
				}
				return true
			})
		}
	}
}
