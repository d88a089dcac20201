package feed

import "sync"

// State is the poller memory between cycles: the last modification token returned by
// the feed endpoint and every entry id ever accepted. The set only grows.
// Mutation is private to the poller, readers can use the exported getters concurrently.
type State struct {
	mu           sync.RWMutex
	lastModified string
	seen         map[string]struct{}
}

// NewState makes an empty state, used for hot start
func NewState() *State {
	return &State{seen: make(map[string]struct{})}
}

// Seen reports whether the entry id was already accepted
func (s *State) Seen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

// Len returns number of seen ids
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// LastModified returns the token used for the next conditional request, empty if unknown
func (s *State) LastModified() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastModified
}

// markSeen adds id to the set, returns false if it was there already
func (s *State) markSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

func (s *State) setLastModified(token string) {
	s.mu.Lock()
	s.lastModified = token
	s.mu.Unlock()
}
