package frame

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// Kind is the rich inferred kind of a column, mirroring the categories the
// classifier buckets on. It is computed from non-missing cells only.
type Kind int

const (
	KindEmpty Kind = iota
	KindBoolean
	KindInteger
	KindFloating
	KindMixedIntegerFloat
	KindDecimal
	KindComplex
	KindString
	KindBytes
	KindDatetime
	KindTimedelta
	KindOther
	KindMixedInteger
	KindMixed
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloating:
		return "floating"
	case KindMixedIntegerFloat:
		return "mixed-integer-float"
	case KindDecimal:
		return "decimal"
	case KindComplex:
		return "complex"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDatetime:
		return "datetime"
	case KindTimedelta:
		return "timedelta"
	case KindOther:
		return "other"
	case KindMixedInteger:
		return "mixed-integer"
	case KindMixed:
		return "mixed"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// ElementaryType is the coarse value-kind of a column's non-missing cells.
type ElementaryType int

const (
	TypeEmpty ElementaryType = iota
	TypeBool
	TypeString
	TypeNumeric
	TypeOther
	TypeMixed
)

func (t ElementaryType) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeNumeric:
		return "numeric"
	case TypeOther:
		return "other"
	case TypeMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// cellKind classifies a single non-missing cell.
func cellKind(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBoolean
	case int, int32, int64:
		return KindInteger
	case float32, float64:
		return KindFloating
	case decimal.Decimal:
		return KindDecimal
	case complex64, complex128:
		return KindComplex
	case string:
		return KindString
	case []byte:
		return KindBytes
	case time.Time:
		return KindDatetime
	case time.Duration:
		return KindTimedelta
	default:
		return KindOther
	}
}

// InferKind infers the column's rich kind. A column already tagged
// categorical reports KindCategorical without inspecting cells. Homogeneous
// cells report their shared kind; an int/float mixture is
// mixed-integer-float, any other mixture containing integers is
// mixed-integer, everything else is mixed.
func (c *Column) InferKind() Kind {
	if c.dtype == DtypeCategorical {
		return KindCategorical
	}
	var kinds [KindMixed + 1]bool
	n := 0
	for _, v := range c.vals {
		if IsMissing(v) {
			continue
		}
		kinds[cellKind(v)] = true
		n++
	}
	if n == 0 {
		return KindEmpty
	}
	distinct := 0
	last := KindEmpty
	for k, present := range kinds {
		if present {
			distinct++
			last = Kind(k)
		}
	}
	if distinct == 1 {
		return last
	}
	if distinct == 2 && kinds[KindInteger] && kinds[KindFloating] {
		return KindMixedIntegerFloat
	}
	if kinds[KindInteger] {
		return KindMixedInteger
	}
	return KindMixed
}

// ElementaryType classifies the column's non-missing cells into the coarse
// type partition. All cells must share one concrete kind to avoid TypeMixed;
// note that integers and floats are distinct kinds here, unlike InferKind's
// mixed-integer-float collapse. A homogeneous integer or float column whose
// value set is exactly {0,1} classifies as TypeBool. An all-missing column
// is TypeEmpty, never an error.
func (c *Column) ElementaryType() ElementaryType {
	var kinds [KindMixed + 1]bool
	n := 0
	for _, v := range c.vals {
		if IsMissing(v) {
			continue
		}
		kinds[cellKind(v)] = true
		n++
	}
	if n == 0 {
		return TypeEmpty
	}
	distinct := 0
	kind := KindEmpty
	for k, present := range kinds {
		if present {
			distinct++
			kind = Kind(k)
		}
	}
	if distinct != 1 {
		return TypeMixed
	}
	switch kind {
	case KindBoolean:
		return TypeBool
	case KindInteger, KindFloating:
		if c.isZeroOneValued() {
			return TypeBool
		}
		return TypeNumeric
	case KindDecimal, KindComplex:
		return TypeNumeric
	case KindString:
		return TypeString
	default:
		return TypeOther
	}
}

// isZeroOneValued reports whether the non-missing value set is exactly
// {0, 1}, integer or float typed.
func (c *Column) isZeroOneValued() bool {
	seen0, seen1 := false, false
	for _, v := range c.vals {
		if IsMissing(v) {
			continue
		}
		var f float64
		switch x := v.(type) {
		case int:
			f = float64(x)
		case int32:
			f = float64(x)
		case int64:
			f = float64(x)
		case float32:
			f = float64(x)
		case float64:
			f = x
		default:
			return false
		}
		switch f {
		case 0:
			seen0 = true
		case 1:
			seen1 = true
		default:
			return false
		}
	}
	return seen0 && seen1
}

// CategoricalElementKind resolves the member kind of a column tagged
// categorical: KindString when every member is a string, KindInteger when
// every member is an integer, KindFloating for any other all-numeric
// membership. The detector retags low-cardinality float columns too, so a
// retagged column must resolve on every later recompute. Mixing strings
// with numbers, or members that are neither, is unsupported and returns an
// error, since downstream encoding handles only those two families.
func (c *Column) CategoricalElementKind() (Kind, error) {
	var kinds [KindMixed + 1]bool
	for _, v := range c.vals {
		if IsMissing(v) {
			continue
		}
		kinds[cellKind(v)] = true
	}
	isString := kinds[KindString]
	isNumeric := kinds[KindInteger] || kinds[KindFloating] || kinds[KindDecimal] || kinds[KindComplex]
	other := false
	for k, present := range kinds {
		if !present {
			continue
		}
		switch Kind(k) {
		case KindString, KindInteger, KindFloating, KindDecimal, KindComplex:
		default:
			other = true
		}
	}
	switch {
	case other || (isString && isNumeric):
		return KindMixed, errors.Newf(
			"frame: categorical column %q has members that are neither all strings nor all numbers", c.name)
	case isString:
		return KindString, nil
	case kinds[KindInteger] && !kinds[KindFloating] && !kinds[KindDecimal] && !kinds[KindComplex]:
		return KindInteger, nil
	case isNumeric:
		return KindFloating, nil
	default:
		return KindEmpty, nil
	}
}
