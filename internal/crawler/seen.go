package crawler

import "sync"

// SeenSet tracks listing hrefs already dispatched during one crawl.
// Hrefs are compared exactly as they appear on the results page.
type SeenSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSeenSet creates an empty SeenSet with the given estimated capacity.
func NewSeenSet(estimatedCapacity int) *SeenSet {
	return &SeenSet{
		seen: make(map[string]struct{}, estimatedCapacity),
	}
}

// MarkIfNew records href and reports whether it was not seen before.
func (s *SeenSet) MarkIfNew(href string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[href]; ok {
		return false
	}
	s.seen[href] = struct{}{}
	return true
}

// Len returns the number of unique hrefs seen.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
