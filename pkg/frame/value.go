package frame

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// IsMissing reports whether a cell holds the missing sentinel. nil is the
// canonical sentinel; float NaN is folded in so numeric columns built from
// raw float data behave the same way.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// valueKey maps a cell to a comparable representation used for distinct
// counting. Keys are prefixed per kind so 1, 1.0, "1" and true stay
// distinct, except that integers and floats share the numeric prefix: the
// {0,1} boolean rule and categorical cardinality both treat 1 and 1.0 as
// the same member, following the source data semantics.
func valueKey(v any) string {
	switch x := v.(type) {
	case bool:
		return "b:" + strconv.FormatBool(x)
	case int:
		return "n:" + strconv.FormatFloat(float64(x), 'g', -1, 64)
	case int32:
		return "n:" + strconv.FormatFloat(float64(x), 'g', -1, 64)
	case int64:
		return "n:" + strconv.FormatFloat(float64(x), 'g', -1, 64)
	case float32:
		return "n:" + strconv.FormatFloat(float64(x), 'g', -1, 64)
	case float64:
		return "n:" + strconv.FormatFloat(x, 'g', -1, 64)
	case decimal.Decimal:
		return "d:" + x.String()
	case complex64:
		return "c:" + strconv.FormatComplex(complex128(x), 'g', -1, 128)
	case complex128:
		return "c:" + strconv.FormatComplex(x, 'g', -1, 128)
	case string:
		return "s:" + x
	case []byte:
		return "y:" + base64.StdEncoding.EncodeToString(x)
	case time.Time:
		return "t:" + x.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return "u:" + x.String()
	default:
		return "o:" + fmt.Sprintf("%v", v)
	}
}

// FormatValue renders a cell for display and for category keys. Missing
// cells render as "NaN".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case decimal.Decimal:
		return x.String()
	case complex64:
		return strconv.FormatComplex(complex128(x), 'g', -1, 128)
	case complex128:
		return strconv.FormatComplex(x, 'g', -1, 128)
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case time.Duration:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
