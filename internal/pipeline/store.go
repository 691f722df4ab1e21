package pipeline

import (
	"sync"
	"time"
)

// Store is a thread-safe in-memory operation registry with TTL eviction.
type Store struct {
	mu  sync.Mutex
	ops map[string]*Operation
	ttl time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ops: make(map[string]*Operation),
		ttl: ttl,
	}
}

// Put registers op. It reports false, leaving the store unchanged, when an
// operation with the same ID is still running. Finished ones are replaced.
func (s *Store) Put(op *Operation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.ops[op.ID]; ok {
		if p := prev.Phase(); p != PhaseDone && p != PhaseFailed {
			return false
		}
	}
	s.ops[op.ID] = op
	return true
}

func (s *Store) Get(id string) *Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops[id]
}

// Len returns the number of tracked operations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ops)
}

// Cleanup removes finished operations idle for longer than the TTL.
// Running operations are kept regardless of age.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, op := range s.ops {
		st := op.Status()
		if st.Phase != PhaseDone && st.Phase != PhaseFailed {
			continue
		}
		if now.Sub(st.UpdatedAt) > s.ttl {
			delete(s.ops, id)
		}
	}
}
