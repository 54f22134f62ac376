// Package countset provides a generic reference-counting set.
package countset

// Set tracks how many times each key has been added. A key is a member
// while its count is above zero. Set is not safe for concurrent use.
type Set[K comparable] struct {
	counts map[K]int
}

// New creates an empty counting set.
func New[K comparable]() *Set[K] {
	return &Set[K]{counts: make(map[K]int)}
}

// Add increments the count for key, creating the entry at 1 if absent.
func (s *Set[K]) Add(key K) {
	s.counts[key]++
}

// Delete decrements the count for key, dropping the entry when it reaches
// zero. It reports whether the key was a member before the call. Deleting
// an absent key is a no-op.
func (s *Set[K]) Delete(key K) bool {
	n, ok := s.counts[key]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(s.counts, key)
	} else {
		s.counts[key] = n - 1
	}
	return true
}

// Has reports whether key has a count above zero.
func (s *Set[K]) Has(key K) bool {
	return s.counts[key] > 0
}

// Len returns the number of distinct member keys.
func (s *Set[K]) Len() int {
	return len(s.counts)
}

// Keys returns all member keys in unspecified order.
func (s *Set[K]) Keys() []K {
	keys := make([]K, 0, len(s.counts))
	for k := range s.counts {
		keys = append(keys, k)
	}
	return keys
}
