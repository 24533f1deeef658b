package dataprep

import (
	"math"

	"github.com/cockroachdb/errors"

	"datakit/pkg/dataset"
	"datakit/pkg/frame"
)

// BinSplit splits a numeric column into nBins equal-width bins, writing the
// bin index of each cell to a derived column (default column+"_bin") and
// registering a BinSplitting operation. Bins are left-closed: an interior
// edge value opens the next bin, and only the maximum folds back into the
// last bin. Missing cells stay missing.
func BinSplit(ds *dataset.Dataset, column string, nBins int, derived string) error {
	if nBins < 1 {
		return errors.Newf("dataprep: nBins must be at least 1, got %d", nBins)
	}
	col, ok := ds.Frame().Column(column)
	if !ok {
		return errors.Newf("dataprep: column %q not in frame", column)
	}
	if derived == "" {
		derived = column + "_bin"
	}

	nums := numericCells(col)
	if len(nums) == 0 {
		return errors.Newf("dataprep: column %q has no numeric values to bin", column)
	}
	min, max := nums[0], nums[0]
	for _, v := range nums {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	width := (max - min) / float64(nBins)

	out := make([]any, col.Len())
	for i, v := range col.Values() {
		if frame.IsMissing(v) {
			continue
		}
		f, ok := asFloat(v)
		if !ok {
			continue
		}
		b := nBins - 1
		if width > 0 {
			b = int((f - min) / width)
			if b >= nBins {
				b = nBins - 1
			}
		}
		out[i] = int64(b)
	}
	if err := ds.Frame().AddColumn(derived, out); err != nil {
		return err
	}

	ds.AddOperation(dataset.Operation{
		Type:           dataset.OpBinSplitting,
		Columns:        []string{column},
		DerivedColumns: []string{derived},
	})
	return nil
}

// LogTransform applies log(1+x) to a numeric column, writing the result to
// a derived column (default column+"_log") and registering a ValueTransform
// operation.
func LogTransform(ds *dataset.Dataset, column, derived string) error {
	col, ok := ds.Frame().Column(column)
	if !ok {
		return errors.Newf("dataprep: column %q not in frame", column)
	}
	if derived == "" {
		derived = column + "_log"
	}

	out := make([]any, col.Len())
	for i, v := range col.Values() {
		if frame.IsMissing(v) {
			continue
		}
		f, ok := asFloat(v)
		if !ok {
			continue
		}
		out[i] = math.Log1p(f)
	}
	if err := ds.Frame().AddColumn(derived, out); err != nil {
		return err
	}

	ds.AddOperation(dataset.Operation{
		Type:           dataset.OpValueTransform,
		Columns:        []string{column},
		DerivedColumns: []string{derived},
	})
	return nil
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
