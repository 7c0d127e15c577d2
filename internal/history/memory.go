package history

import (
	"sync"
	"time"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// MemoryStore keeps history in process memory
type MemoryStore struct {
	mu      sync.Mutex
	now     Clock
	entries map[string]map[string]Entry // user -> key -> entry
}

// NewMemoryStore creates an empty in-memory store; nil clock means time.Now
func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		now:     clock,
		entries: make(map[string]map[string]Entry),
	}
}

func (s *MemoryStore) Filter(user string, suggestions []types.Suggestion) ([]types.Suggestion, error) {
	if user == "" {
		return nil, ErrNoUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seen := s.entries[user]
	fresh := make([]types.Suggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		if e, ok := seen[Key(sg)]; ok && !expired(e, now) {
			continue
		}
		fresh = append(fresh, sg)
	}
	return fresh, nil
}

func (s *MemoryStore) Add(user string, suggestions []types.Suggestion) error {
	if user == "" {
		return ErrNoUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purge(user, now)
	if s.entries[user] == nil {
		s.entries[user] = make(map[string]Entry)
	}
	for _, sg := range suggestions {
		key := Key(sg)
		s.entries[user][key] = Entry{Key: key, Suggestion: sg, Timestamp: now}
	}
	return nil
}

func (s *MemoryStore) History(user string) ([]Entry, error) {
	if user == "" {
		return nil, ErrNoUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purge(user, s.now())
	entries := make([]Entry, 0, len(s.entries[user]))
	for _, e := range s.entries[user] {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (s *MemoryStore) Clear(user string) error {
	if user == "" {
		return ErrNoUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, user)
	return nil
}

// purge must be called with mu held
func (s *MemoryStore) purge(user string, now time.Time) {
	for key, e := range s.entries[user] {
		if expired(e, now) {
			delete(s.entries[user], key)
		}
	}
}
