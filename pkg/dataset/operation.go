package dataset

import (
	"fmt"
	"strings"
)

// OpType names the kind of transformation an Operation records.
type OpType string

const (
	OpCategoricalEncoding OpType = "categorical_encoding"
	OpBinSplitting        OpType = "bin_splitting"
	OpFillNA              OpType = "fill_na"
	OpValueTransform      OpType = "value_transform"
)

// Operation is an immutable record of one transformation applied to the
// dataset: what kind it was, which columns it read, which columns it
// produced, and optionally the identity of the encoder that performed it.
//
// Unset fields mean "unspecified" and act as wildcards in Matches: a nil
// Columns or DerivedColumns slice (as opposed to a non-nil empty one), an
// empty Type, or an empty EncoderID each match any value on the other side.
// Operations are registered once and never mutated afterward.
type Operation struct {
	Type           OpType
	Columns        []string // source columns, in order
	DerivedColumns []string // produced columns, in order
	EncoderID      string   // opaque encoder identity

	// EncodedValues maps encoded codes back to the original category for
	// encoding operations. It is carried for bookkeeping and ignored by
	// Matches.
	EncodedValues map[int]string
}

// Matches reports structural field-by-field equality with wildcard
// semantics: a field left unspecified on either side matches anything.
// Two fully specified operations match only when all fields are equal, so
// Matches is reflexive and symmetric in that case.
func (o Operation) Matches(other Operation) bool {
	if o.Type != "" && other.Type != "" && o.Type != other.Type {
		return false
	}
	if o.Columns != nil && other.Columns != nil && !equalNames(o.Columns, other.Columns) {
		return false
	}
	if o.DerivedColumns != nil && other.DerivedColumns != nil && !equalNames(o.DerivedColumns, other.DerivedColumns) {
		return false
	}
	if o.EncoderID != "" && other.EncoderID != "" && o.EncoderID != other.EncoderID {
		return false
	}
	return true
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (o Operation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(", orUnspecified(string(o.Type)))
	fmt.Fprintf(&b, "columns=%s, derived=%s, encoder=%s",
		nameList(o.Columns), nameList(o.DerivedColumns), orUnspecified(o.EncoderID))
	b.WriteString(")")
	return b.String()
}

func nameList(names []string) string {
	if names == nil {
		return "unspecified"
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func orUnspecified(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
