package batch

import "sync"

// Stats aggregates batch counters. All mutation goes through its methods
// and is serialized by one mutex; readers get point-in-time snapshots.
type Stats struct {
	mu          sync.Mutex
	processed   int
	renamed     int
	problematic int
	categories  map[string]map[string]int
}

// Snapshot is a consistent copy of the counters, safe to keep.
type Snapshot struct {
	Processed   int                       `json:"processed"`
	Renamed     int                       `json:"renamed"`
	Problematic int                       `json:"problematic"`
	Categories  map[string]map[string]int `json:"categories,omitempty"`
}

func NewStats() *Stats {
	return &Stats{categories: make(map[string]map[string]int)}
}

// Complete records one finished document.
func (s *Stats) Complete(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	if success {
		s.renamed++
	} else {
		s.problematic++
	}
}

// AddCategory bumps the frequency of one dimension value.
func (s *Stats) AddCategory(dimension, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categories[dimension] == nil {
		s.categories[dimension] = make(map[string]int)
	}
	s.categories[dimension][value]++
}

// Snapshot returns a deep copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Processed:   s.processed,
		Renamed:     s.renamed,
		Problematic: s.problematic,
	}
	if len(s.categories) > 0 {
		snap.Categories = make(map[string]map[string]int, len(s.categories))
		for dim, values := range s.categories {
			snap.Categories[dim] = make(map[string]int, len(values))
			for v, n := range values {
				snap.Categories[dim][v] = n
			}
		}
	}
	return snap
}
