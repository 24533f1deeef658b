package dataset

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnsupportedCategoricalKind is a configuration error: a column tagged
// categorical whose members are neither all strings nor all numbers. It is
// fatal and never retried.
var ErrUnsupportedCategoricalKind = errors.New("dataset: unsupported categorical element kind")

// ErrInvalidQuery is returned by FindOperation when the query specifies
// neither source nor derived columns, so no per-column list can be selected.
var ErrInvalidQuery = errors.New("dataset: operation query needs source or derived columns")

// AmbiguousOperationError is returned when a ledger lookup matches more than
// one recorded operation. It is surfaced to the caller with every match and
// never auto-resolved: multiple matches mean either a duplicate application
// or an under-specified query.
type AmbiguousOperationError struct {
	Matches []*Operation
}

func (e *AmbiguousOperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dataset: %d operations match, narrow the query:", len(e.Matches))
	for i, op := range e.Matches {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, op)
	}
	return b.String()
}
