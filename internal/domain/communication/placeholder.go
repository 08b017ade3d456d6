package communication

import "strings"

// PlaceholderSet is an ordered set of placeholder names.
// Insertion order is preserved and duplicates are ignored.
type PlaceholderSet struct {
	items []string
	seen  map[string]struct{}
}

// NewPlaceholderSet builds a set from names, trimming and de-duplicating them
func NewPlaceholderSet(names ...string) PlaceholderSet {
	var s PlaceholderSet
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add appends name if it is non-empty and not already present
func (s *PlaceholderSet) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[name]; ok {
		return false
	}
	s.seen[name] = struct{}{}
	s.items = append(s.items, name)
	return true
}

// Contains reports whether name is in the set
func (s PlaceholderSet) Contains(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Len returns the number of names
func (s PlaceholderSet) Len() int {
	return len(s.items)
}

// Names returns a copy of the names in first-seen order. Never nil.
func (s PlaceholderSet) Names() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Missing returns the names not accepted by known, in order
func (s PlaceholderSet) Missing(known func(string) bool) []string {
	out := make([]string, 0)
	for _, n := range s.items {
		if !known(n) {
			out = append(out, n)
		}
	}
	return out
}
