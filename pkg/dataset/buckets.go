package dataset

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"datakit/pkg/frame"
)

// columnsByType is the cached partition of the feature columns into
// semantic buckets. Buckets may overlap: numerical contains the numeric
// categoricals and the boolean columns (the public numerical view folds
// booleans in; they stay separately tracked in boolean).
type columnsByType struct {
	constant       ColumnSet
	mixed          ColumnSet
	numerical      ColumnSet
	medExam        ColumnSet
	str            ColumnSet
	strCategorical ColumnSet
	numCategorical ColumnSet
	boolean        ColumnSet
	other          ColumnSet
}

func (c *columnsByType) String() string {
	return fmt.Sprintf("Columns with:"+
		"\n\t1.\tMixed types: \t\t%d"+
		"\n\t2.\tNumerical types (float/int): \t%d"+
		"\n\t3.\tString types: \t\t%d"+
		"\n\t4.\tBool types: \t\t%d"+
		"\n\t5.\tOther types: \t\t%d"+
		"\nAmong these categories:"+
		"\n\t1.\tString categorical columns: %d"+
		"\n\t2.\tNumeric categorical columns: %d"+
		"\n\t3.\tMeasurement columns (numerical, no metadata): %d"+
		"\n\t4.\tOne repeated value: %d",
		len(c.mixed), len(c.numerical), len(c.str), len(c.boolean), len(c.other),
		len(c.strCategorical), len(c.numCategorical), len(c.medExam), len(c.constant))
}

// snapshot returns the cached bucket partition, recomputing it when the
// frame structure or the column roles changed since the last computation.
func (d *Dataset) snapshot() (*columnsByType, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap != nil && d.snapGen == d.fr.Generation() && d.snapRole == d.roleGen {
		return d.snap, nil
	}
	snap, err := d.classify()
	if err != nil {
		return nil, err
	}
	d.snap = snap
	d.snapGen = d.fr.Generation()
	d.snapRole = d.roleGen
	return snap, nil
}

// classify computes the bucket partition. Callers hold the mutex. The
// per-column kind inference is read-only and fans out across a worker pool;
// the categorical detector's dtype retags run after that barrier, on one
// goroutine.
func (d *Dataset) classify() (*columnsByType, error) {
	constant := make(ColumnSet)
	for name := range d.features {
		col, ok := d.fr.Column(name)
		if !ok {
			return nil, errors.Newf("dataset: feature column %q not in frame", name)
		}
		if col.NUnique(false) == 1 {
			constant.Add(name)
		}
	}

	candidates := d.features.Diff(constant).Sorted()
	kinds := make([]frame.Kind, len(candidates))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range candidates {
		i, name := i, name
		g.Go(func() error {
			col, ok := d.fr.Column(name)
			if !ok {
				return errors.Newf("dataset: feature column %q not in frame", name)
			}
			kinds[i] = col.InferKind()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mixed := make(ColumnSet)
	numerical := make(ColumnSet)
	str := make(ColumnSet)
	boolean := make(ColumnSet)
	other := make(ColumnSet)
	categorical := make(ColumnSet)

	for i, name := range candidates {
		switch kinds[i] {
		case frame.KindString:
			str.Add(name)
		case frame.KindInteger, frame.KindFloating, frame.KindMixedIntegerFloat,
			frame.KindDecimal, frame.KindComplex:
			numerical.Add(name)
		case frame.KindBoolean:
			boolean.Add(name)
		case frame.KindMixedInteger, frame.KindMixed:
			mixed.Add(name)
		case frame.KindCategorical:
			categorical.Add(name)
		default:
			// bytes, datetime, timedelta, empty and unrecognized kinds
			other.Add(name)
		}
	}

	strCategorical, err := d.detectCategorical(str)
	if err != nil {
		return nil, err
	}
	numCategorical, err := d.detectCategorical(numerical)
	if err != nil {
		return nil, err
	}

	// Columns tagged categorical, whether up front or by an earlier
	// detector pass, fold into the bucket matching their member kind:
	// strings on one side, numbers on the other. A string/number mixture
	// or any other membership is a fatal configuration error.
	for name := range categorical {
		col, _ := d.fr.Column(name)
		kind, err := col.CategoricalElementKind()
		if err != nil {
			return nil, errors.Mark(err, ErrUnsupportedCategoricalKind)
		}
		switch kind {
		case frame.KindString:
			strCategorical.Add(name)
			str.Add(name)
		case frame.KindInteger, frame.KindFloating:
			numCategorical.Add(name)
			numerical.Add(name)
		}
	}

	// Boolean columns count as numeric for feature purposes; the separate
	// boolean bucket keeps them addressable on their own.
	publicNumerical := numerical.Union(boolean)
	medExam := publicNumerical.Diff(constant).Diff(d.metadata)

	return &columnsByType{
		constant:       constant,
		mixed:          mixed,
		numerical:      publicNumerical,
		medExam:        medExam,
		str:            str,
		strCategorical: strCategorical,
		numCategorical: numCategorical,
		boolean:        boolean,
		other:          other,
	}, nil
}

// detectCategorical applies the cardinality rule to candidate columns and
// retags the positives in place, so downstream consumers of the frame see
// the categorical dtype. Callers hold the mutex.
//
// A column is categorical when its distinct non-missing count u is below
// the absolute minimum (small cardinality is categorical regardless of
// table size), or below nonMissingCount / threshold using integer floor
// division.
func (d *Dataset) detectCategorical(candidates ColumnSet) (ColumnSet, error) {
	out := make(ColumnSet)
	for _, name := range candidates.Sorted() {
		col, ok := d.fr.Column(name)
		if !ok {
			return nil, errors.Newf("dataset: feature column %q not in frame", name)
		}
		u := col.NUnique(true)
		if u < d.settings.CategoricalMinUnique || u < col.Count()/d.settings.CategoricalThreshold {
			col.SetDtype(frame.DtypeCategorical)
			out.Add(name)
			d.log.Debugw("column retagged categorical", "column", name, "distinct", u)
		}
	}
	return out, nil
}

// MixedTypeColumns returns the feature columns whose cells have
// heterogeneous types.
func (d *Dataset) MixedTypeColumns() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.mixed.Copy(), nil
}

// NumericalColumns returns the feature columns with numeric cells. Boolean
// columns are folded in; use BooleanColumns to address them alone.
func (d *Dataset) NumericalColumns() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.numerical.Copy(), nil
}

// MedExamColumns returns the plain-measurement bucket:
// (numerical ∪ boolean) minus constant and metadata columns.
func (d *Dataset) MedExamColumns() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.medExam.Copy(), nil
}

// StringColumns returns the feature columns with string cells.
func (d *Dataset) StringColumns() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.str.Copy(), nil
}

// StringCategoricalColumns returns the string columns detected or
// pre-tagged as categorical.
func (d *Dataset) StringCategoricalColumns() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.strCategorical.Copy(), nil
}

// NumericCategoricalColumns returns the numeric columns detected or
// pre-tagged as categorical.
func (d *Dataset) NumericCategoricalColumns() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.numCategorical.Copy(), nil
}

// BooleanColumns returns the feature columns with boolean cells. Numeric
// {0,1} columns stay numerical here; only ColumnTypes applies the {0,1}
// boolean rule.
func (d *Dataset) BooleanColumns() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.boolean.Copy(), nil
}

// OtherColumns returns the feature columns whose cells fit no conventional
// bucket (bytes, datetimes, durations, ...).
func (d *Dataset) OtherColumns() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.other.Copy(), nil
}

// ColumnType pairs a column name with its elementary type, for batch
// aggregation of per-column results.
type ColumnType struct {
	Column string
	Type   frame.ElementaryType
}

// ColumnTypes classifies the given columns (default: all feature columns)
// into elementary types. The per-column scans are independent and fan out
// across a worker pool.
func (d *Dataset) ColumnTypes(cols ...string) ([]ColumnType, error) {
	if len(cols) == 0 {
		cols = d.FeatureColumns().Sorted()
	}
	out := make([]ColumnType, len(cols))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range cols {
		i, name := i, name
		g.Go(func() error {
			col, ok := d.fr.Column(name)
			if !ok {
				return errors.Newf("dataset: column %q not in frame", name)
			}
			out[i] = ColumnType{Column: name, Type: col.ElementaryType()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
