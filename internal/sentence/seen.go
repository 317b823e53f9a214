package sentence

import "sync"

// Seen is the batch-wide set of sentence keys already attempted.
// It is safe for concurrent use.
type Seen struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewSeen creates an empty set.
func NewSeen() *Seen {
	return &Seen{keys: make(map[string]struct{})}
}

// CheckAndInsert inserts key and reports whether it was absent.
// Exactly one caller observes true for a given key.
func (s *Seen) CheckAndInsert(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the number of keys.
func (s *Seen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
