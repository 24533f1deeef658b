package dataprep

import (
	"math"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"datakit/pkg/dataset"
	"datakit/pkg/frame"
	"datakit/pkg/stats"
)

// FillNA fills the missing cells of one column with value. With derived
// empty the column is filled in place; otherwise the filled result lands in
// a new column of that name. With inplace false the original dataset is
// untouched and a deep copy carrying the change is returned; with inplace
// true the receiver itself is modified and returned. Either way the
// resulting dataset's ledger records a FillNA operation.
func FillNA(ds *dataset.Dataset, column string, value any, derived string, inplace bool) (*dataset.Dataset, error) {
	if !ds.Frame().Has(column) {
		return nil, errors.Newf("dataprep: column %q not in frame", column)
	}
	target := ds
	if !inplace {
		target = ds.Copy()
	}
	col, _ := target.Frame().Column(column)

	filled := make([]any, col.Len())
	for i, v := range col.Values() {
		if frame.IsMissing(v) {
			filled[i] = value
		} else {
			filled[i] = v
		}
	}

	op := dataset.Operation{
		Type:    dataset.OpFillNA,
		Columns: []string{column},
	}
	if derived != "" {
		if err := target.Frame().AddColumn(derived, filled); err != nil {
			return nil, err
		}
		op.DerivedColumns = []string{derived}
	} else {
		for i, v := range filled {
			col.Set(i, v)
		}
		op.DerivedColumns = []string{column}
	}
	target.AddOperation(op)
	return target, nil
}

// numericCells extracts the non-missing cells of a column as float64,
// skipping cells that are not numeric.
func numericCells(col *frame.Column) []float64 {
	var nums []float64
	for _, v := range col.Values() {
		if frame.IsMissing(v) {
			continue
		}
		switch x := v.(type) {
		case int:
			nums = append(nums, float64(x))
		case int32:
			nums = append(nums, float64(x))
		case int64:
			nums = append(nums, float64(x))
		case float32:
			nums = append(nums, float64(x))
		case float64:
			nums = append(nums, x)
		}
	}
	return nums
}

// FillNAMean fills missing cells with the column mean.
func FillNAMean(ds *dataset.Dataset, column, derived string, inplace bool) (*dataset.Dataset, error) {
	col, ok := ds.Frame().Column(column)
	if !ok {
		return nil, errors.Newf("dataprep: column %q not in frame", column)
	}
	return FillNA(ds, column, stats.Mean(numericCells(col)), derived, inplace)
}

// FillNAMedian fills missing cells with the column median.
func FillNAMedian(ds *dataset.Dataset, column, derived string, inplace bool) (*dataset.Dataset, error) {
	col, ok := ds.Frame().Column(column)
	if !ok {
		return nil, errors.Newf("dataprep: column %q not in frame", column)
	}
	return FillNA(ds, column, stats.Median(numericCells(col)), derived, inplace)
}

// FillNAMode fills missing cells with the most frequent numeric value.
func FillNAMode(ds *dataset.Dataset, column, derived string, inplace bool) (*dataset.Dataset, error) {
	col, ok := ds.Frame().Column(column)
	if !ok {
		return nil, errors.Newf("dataprep: column %q not in frame", column)
	}
	return FillNA(ds, column, stats.Mode(numericCells(col)), derived, inplace)
}

// AutoImpute selects a fill strategy per feature column from its missing
// ratio and distribution, modifying the dataset in place:
//
//   - missing ratio above maxMissing: left alone and logged, the column is
//     a TrivialColumns candidate for the caller to drop
//   - numeric, ratio below 0.05: mean
//   - numeric, skewed (|mean-median| beyond one standard deviation): median
//   - numeric otherwise: constant 0
//   - non-numeric: constant "Unknown"
func AutoImpute(ds *dataset.Dataset, maxMissing float64, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	rows := ds.Frame().NumRows()
	if rows == 0 {
		return nil
	}
	types, err := ds.ColumnTypes()
	if err != nil {
		return err
	}
	for _, ct := range types {
		col, ok := ds.Frame().Column(ct.Column)
		if !ok {
			continue
		}
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}
		ratio := float64(missing) / float64(rows)
		if ratio > maxMissing {
			log.Infow("column too sparse to impute", "column", ct.Column, "missing_ratio", ratio)
			continue
		}

		switch ct.Type {
		case frame.TypeNumeric, frame.TypeBool:
			nums := numericCells(col)
			mean := stats.Mean(nums)
			median := stats.Median(nums)
			skew := math.Abs(mean-median) / (stats.Std(nums) + 1e-9)
			switch {
			case ratio < 0.05:
				_, err = FillNAMean(ds, ct.Column, "", true)
				log.Debugw("imputed with mean", "column", ct.Column)
			case skew > 1.0:
				_, err = FillNAMedian(ds, ct.Column, "", true)
				log.Debugw("imputed with median", "column", ct.Column, "skew", skew)
			default:
				_, err = FillNA(ds, ct.Column, float64(0), "", true)
				log.Debugw("imputed with constant 0", "column", ct.Column)
			}
		default:
			_, err = FillNA(ds, ct.Column, "Unknown", "", true)
			log.Debugw("imputed with constant Unknown", "column", ct.Column)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
