package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddColumn(t *testing.T) {
	f := New()
	require.NoError(t, f.AddColumn("a", []any{int64(1), int64(2)}))
	require.NoError(t, f.AddColumn("b", []any{"x", "y"}))

	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, 2, f.NumCols())
	assert.Equal(t, []string{"a", "b"}, f.ColumnNames())

	err := f.AddColumn("a", []any{int64(3), int64(4)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	err = f.AddColumn("c", []any{int64(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows")
}

func TestGenerationBumpsOnStructuralChange(t *testing.T) {
	f := New()
	require.NoError(t, f.AddColumn("a", []any{int64(1)}))
	gen := f.Generation()
	require.NoError(t, f.AddColumn("b", []any{int64(2)}))
	assert.Greater(t, f.Generation(), gen)

	// a dtype retag is not structural
	gen = f.Generation()
	col, ok := f.Column("b")
	require.True(t, ok)
	col.SetDtype(DtypeCategorical)
	assert.Equal(t, gen, f.Generation())
}

func TestMissingCounts(t *testing.T) {
	f := New()
	require.NoError(t, f.AddColumn("a", []any{int64(1), nil, math.NaN(), float64(2)}))
	col, _ := f.Column("a")

	assert.Equal(t, 2, col.MissingCount())
	assert.Equal(t, 2, col.Count())
	assert.Len(t, col.NonMissing(), 2)
}

func TestNUnique(t *testing.T) {
	f := New()
	require.NoError(t, f.AddColumn("mixed_missing", []any{"a", "b", "a", nil}))
	require.NoError(t, f.AddColumn("constant", []any{"a", "a", "a", "a"}))
	require.NoError(t, f.AddColumn("all_missing", []any{nil, nil, nil, nil}))
	require.NoError(t, f.AddColumn("int_float", []any{int64(1), float64(1), int64(2), nil}))

	col, _ := f.Column("mixed_missing")
	assert.Equal(t, 2, col.NUnique(true))
	assert.Equal(t, 3, col.NUnique(false), "missing counts as one distinct state")

	col, _ = f.Column("constant")
	assert.Equal(t, 1, col.NUnique(true))
	assert.Equal(t, 1, col.NUnique(false))

	col, _ = f.Column("all_missing")
	assert.Equal(t, 0, col.NUnique(true))
	assert.Equal(t, 1, col.NUnique(false), "a fully missing column holds one state")

	// 1 and 1.0 are the same member
	col, _ = f.Column("int_float")
	assert.Equal(t, 2, col.NUnique(true))
}

func TestCopyIsIndependent(t *testing.T) {
	f := New()
	require.NoError(t, f.AddColumn("a", []any{int64(1), nil}))
	cp := f.Copy()

	col, _ := cp.Column("a")
	col.Set(1, int64(2))
	col.SetDtype(DtypeCategorical)

	orig, _ := f.Column("a")
	assert.True(t, IsMissing(orig.Value(1)))
	assert.Equal(t, DtypeAuto, orig.Dtype())
}
