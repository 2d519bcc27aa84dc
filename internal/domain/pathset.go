package domain

import "sort"

// PathSet is an insertion-ordered set of repository-relative paths.
// The slice loop owns one and adds to it across attempts; it is never reset
// mid-slice. The zero value is ready to use.
type PathSet struct {
	order []string
	index map[string]struct{}
}

// Add inserts paths not already present, keeping first-insertion order.
func (s *PathSet) Add(paths ...string) {
	if s.index == nil {
		s.index = make(map[string]struct{}, len(paths))
	}
	for _, p := range paths {
		if _, ok := s.index[p]; ok {
			continue
		}
		s.index[p] = struct{}{}
		s.order = append(s.order, p)
	}
}

// Contains reports whether p is in the set.
func (s *PathSet) Contains(p string) bool {
	_, ok := s.index[p]
	return ok
}

// Len returns the number of paths.
func (s *PathSet) Len() int {
	return len(s.order)
}

// Paths returns a copy of the paths in insertion order.
func (s *PathSet) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Sorted returns a sorted copy of the paths.
func (s *PathSet) Sorted() []string {
	out := s.Paths()
	sort.Strings(out)
	return out
}
