// Package history keeps recently generated offer letters in memory so they
// can be listed and re-downloaded. Entries expire after a TTL and the store
// is capped; nothing is persisted across restarts.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one generated letter.
type Entry struct {
	ID            string    `json:"id"`
	CandidateName string    `json:"candidate_name"`
	Filename      string    `json:"filename"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size_bytes"`
	CreatedAt     time.Time `json:"created_at"`

	data []byte
}

// Data returns the rendered document bytes.
func (e *Entry) Data() []byte {
	return e.data
}

// Store is a thread-safe in-memory registry of rendered letters with TTL
// eviction and a max-entries cap.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	ttl     time.Duration
	max     int
}

func NewStore(ttl time.Duration, max int) *Store {
	return &Store{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		max:     max,
	}
}

// Add records a rendered letter and returns its entry. When the cap is
// reached the oldest entry makes room.
func (s *Store) Add(candidateName, filename, contentType string, data []byte) *Entry {
	e := &Entry{
		ID:            uuid.NewString(),
		CandidateName: candidateName,
		Filename:      filename,
		ContentType:   contentType,
		Size:          int64(len(data)),
		CreatedAt:     time.Now(),
		data:          data,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.max > 0 && len(s.entries) >= s.max {
		s.evictOldestLocked()
	}
	s.entries[e.ID] = e
	return e
}

func (s *Store) evictOldestLocked() {
	var oldest *Entry
	for _, e := range s.entries {
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest != nil {
		delete(s.entries, oldest.ID)
	}
}

// Get returns the entry with the given ID, or nil.
func (s *Store) Get(id string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id]
}

// Delete removes an entry; it reports whether the ID existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// List returns all live entries, newest first.
func (s *Store) List() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Cleanup removes expired entries.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, e := range s.entries {
		if now.Sub(e.CreatedAt) > s.ttl {
			delete(s.entries, id)
		}
	}
}
