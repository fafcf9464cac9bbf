package group

// Set is an insertion-ordered set of strings.
// The zero value is ready to use.
type Set struct {
	index map[string]struct{}
	items []string
}

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is in the set.
func (s *Set) Has(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns the elements in insertion order. The slice is a copy.
func (s *Set) Items() []string {
	return append(make([]string, 0, len(s.items)), s.items...)
}
