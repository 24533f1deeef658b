package dataprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datakit/pkg/dataset"
	"datakit/pkg/frame"
)

func imputeDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	f := frame.New()
	require.NoError(t, f.AddColumn("x", []any{1.0, nil, 3.0, nil}))
	require.NoError(t, f.AddColumn("label", []any{"a", nil, "a", "b"}))
	return dataset.New(f)
}

func TestFillNAInPlace(t *testing.T) {
	ds := imputeDataset(t)
	out, err := FillNA(ds, "x", 0.0, "", true)
	require.NoError(t, err)
	assert.Same(t, ds, out)

	col, _ := ds.Frame().Column("x")
	assert.Equal(t, 0, col.MissingCount())
	assert.Equal(t, 0.0, col.Value(1))

	ops := ds.OperationsOn("x")
	require.Len(t, ops, 1)
	assert.Equal(t, dataset.OpFillNA, ops[0].Type)
	assert.Equal(t, []string{"x"}, ops[0].DerivedColumns)
}

func TestFillNACopy(t *testing.T) {
	ds := imputeDataset(t)
	out, err := FillNA(ds, "x", 9.0, "", false)
	require.NoError(t, err)
	require.NotSame(t, ds, out)

	orig, _ := ds.Frame().Column("x")
	assert.Equal(t, 2, orig.MissingCount(), "original is untouched")
	filled, _ := out.Frame().Column("x")
	assert.Equal(t, 0, filled.MissingCount())

	assert.Empty(t, ds.OperationsOn("x"))
	assert.Len(t, out.OperationsOn("x"), 1)
}

func TestFillNADerivedColumn(t *testing.T) {
	ds := imputeDataset(t)
	_, err := FillNA(ds, "x", 7.0, "x_filled", true)
	require.NoError(t, err)

	orig, _ := ds.Frame().Column("x")
	assert.Equal(t, 2, orig.MissingCount())

	filled, ok := ds.Frame().Column("x_filled")
	require.True(t, ok)
	assert.Equal(t, 7.0, filled.Value(1))

	found, err := ds.FindOperation(dataset.Operation{
		Type:    dataset.OpFillNA,
		Columns: []string{"x"},
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"x_filled"}, found.DerivedColumns)
	assert.True(t, ds.DerivedColumns().Contains("x_filled"))
}

func TestFillNAMean(t *testing.T) {
	ds := imputeDataset(t)
	_, err := FillNAMean(ds, "x", "", true)
	require.NoError(t, err)
	col, _ := ds.Frame().Column("x")
	assert.Equal(t, 2.0, col.Value(1), "mean of 1 and 3")
}

func TestAutoImpute(t *testing.T) {
	f := frame.New()
	const rows = 100
	lowMissing := make([]any, rows)
	sparse := make([]any, rows)
	labels := make([]any, rows)
	for i := 0; i < rows; i++ {
		lowMissing[i] = float64(i)
		sparse[i] = nil
		if i%3 == 0 {
			labels[i] = nil
		} else if i%2 == 0 {
			labels[i] = "even"
		} else {
			labels[i] = "odd"
		}
	}
	lowMissing[10] = nil // 1% missing -> mean
	require.NoError(t, f.AddColumn("low", lowMissing))
	require.NoError(t, f.AddColumn("sparse", sparse))
	require.NoError(t, f.AddColumn("label", labels))

	ds := dataset.New(f)
	require.NoError(t, AutoImpute(ds, 0.5, nil))

	low, _ := ds.Frame().Column("low")
	assert.Equal(t, 0, low.MissingCount())

	sp, _ := ds.Frame().Column("sparse")
	assert.Equal(t, rows, sp.MissingCount(), "columns over the missing cap are left alone")

	lab, _ := ds.Frame().Column("label")
	assert.Equal(t, 0, lab.MissingCount())
	assert.Equal(t, "Unknown", lab.Value(0))

	assert.Len(t, ds.OperationsOn("low"), 1)
	assert.Empty(t, ds.OperationsOn("sparse"))
}
