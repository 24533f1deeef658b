package dataset

import "sort"

// ColumnSet is a set of column names.
type ColumnSet map[string]struct{}

// NewColumnSet builds a set from names.
func NewColumnSet(names ...string) ColumnSet {
	s := make(ColumnSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s ColumnSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts a name.
func (s ColumnSet) Add(name string) { s[name] = struct{}{} }

// Union returns a new set with the members of both sets.
func (s ColumnSet) Union(other ColumnSet) ColumnSet {
	out := make(ColumnSet, len(s)+len(other))
	for n := range s {
		out[n] = struct{}{}
	}
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Diff returns a new set with the members of s not in other.
func (s ColumnSet) Diff(other ColumnSet) ColumnSet {
	out := make(ColumnSet, len(s))
	for n := range s {
		if _, ok := other[n]; !ok {
			out[n] = struct{}{}
		}
	}
	return out
}

// Copy returns a shallow copy.
func (s ColumnSet) Copy() ColumnSet {
	out := make(ColumnSet, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}

// Sorted returns the member names in lexical order.
func (s ColumnSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
