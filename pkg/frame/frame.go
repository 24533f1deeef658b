// Package frame provides the in-memory table that the dataset analysis
// operates on: an ordered set of named columns over a shared row index.
// Cells hold plain Go runtime values; nil is the missing sentinel (a float
// NaN also counts as missing).
package frame

import (
	"github.com/cockroachdb/errors"
)

// Dtype is the externally visible tag of a column. Columns start as Auto and
// may be retagged Categorical by the categorical detector.
type Dtype string

const (
	DtypeAuto        Dtype = "auto"
	DtypeCategorical Dtype = "categorical"
)

// Frame is an ordered collection of equally sized named columns.
type Frame struct {
	order []string
	cols  map[string]*Column
	nrows int
	gen   uint64
}

// Column is a single named value sequence with a dtype tag.
type Column struct {
	name  string
	vals  []any
	dtype Dtype
}

// New returns an empty frame.
func New() *Frame {
	return &Frame{cols: make(map[string]*Column)}
}

// AddColumn appends a column to the frame. The first column fixes the row
// count; every later column must match it. Duplicate names are rejected.
func (f *Frame) AddColumn(name string, vals []any) error {
	if _, ok := f.cols[name]; ok {
		return errors.Newf("frame: column %q already exists", name)
	}
	if len(f.order) > 0 && len(vals) != f.nrows {
		return errors.Newf("frame: column %q has %d rows, frame has %d", name, len(vals), f.nrows)
	}
	if len(f.order) == 0 {
		f.nrows = len(vals)
	}
	f.cols[name] = &Column{name: name, vals: vals, dtype: DtypeAuto}
	f.order = append(f.order, name)
	f.gen++
	return nil
}

// Column returns the named column, or false when it does not exist.
func (f *Frame) Column(name string) (*Column, bool) {
	c, ok := f.cols[name]
	return c, ok
}

// ColumnNames returns the column names in insertion order.
func (f *Frame) ColumnNames() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// NumRows returns the shared row count.
func (f *Frame) NumRows() int { return f.nrows }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.order) }

// Generation is bumped on every structural change (column addition). Cached
// derivations of the frame compare generations to detect staleness. Dtype
// retags do not count as structural changes.
func (f *Frame) Generation() uint64 { return f.gen }

// Copy returns a deep copy of the frame. Cell values are shared (they are
// immutable by convention), the column slices are not.
func (f *Frame) Copy() *Frame {
	nf := &Frame{
		order: append([]string(nil), f.order...),
		cols:  make(map[string]*Column, len(f.cols)),
		nrows: f.nrows,
	}
	for name, c := range f.cols {
		vals := make([]any, len(c.vals))
		copy(vals, c.vals)
		nf.cols[name] = &Column{name: name, vals: vals, dtype: c.dtype}
	}
	return nf
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Dtype returns the column's dtype tag.
func (c *Column) Dtype() Dtype { return c.dtype }

// SetDtype retags the column in place.
func (c *Column) SetDtype(d Dtype) { c.dtype = d }

// Len returns the number of cells, missing included.
func (c *Column) Len() int { return len(c.vals) }

// Value returns the cell at row i.
func (c *Column) Value(i int) any { return c.vals[i] }

// Values returns the backing cell slice. Callers must not mutate it
// directly; use Set for in-place cell updates.
func (c *Column) Values() []any { return c.vals }

// Set replaces the cell at row i.
func (c *Column) Set(i int, v any) { c.vals[i] = v }

// NonMissing returns the cells that are not missing, in row order.
func (c *Column) NonMissing() []any {
	out := make([]any, 0, len(c.vals))
	for _, v := range c.vals {
		if !IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.vals {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// Count returns the number of non-missing cells.
func (c *Column) Count() int { return len(c.vals) - c.MissingCount() }

// NUnique returns the number of distinct non-missing values. When
// dropMissing is false and the column has at least one missing cell, the
// missing state counts as one extra distinct value, so a fully missing
// column reports 1.
func (c *Column) NUnique(dropMissing bool) int {
	seen := make(map[string]struct{})
	hasMissing := false
	for _, v := range c.vals {
		if IsMissing(v) {
			hasMissing = true
			continue
		}
		seen[valueKey(v)] = struct{}{}
	}
	n := len(seen)
	if !dropMissing && hasMissing {
		n++
	}
	return n
}
