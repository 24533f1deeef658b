package dataset

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datakit/pkg/frame"
)

func ledgerDataset(t *testing.T) *Dataset {
	t.Helper()
	f := frame.New()
	require.NoError(t, f.AddColumn("id", []any{int64(1), int64(2)}))
	require.NoError(t, f.AddColumn("city", []any{"a", "b"}))
	require.NoError(t, f.AddColumn("age", []any{int64(30), int64(40)}))
	return New(f, WithMetadataColumns("id"))
}

func TestAddOperationFansOut(t *testing.T) {
	ds := ledgerDataset(t)
	op := Operation{
		Type:           OpCategoricalEncoding,
		Columns:        []string{"city"},
		DerivedColumns: []string{"city_enc", "city_enc2"},
		EncoderID:      "enc-1",
	}
	ds.AddOperation(op)

	assert.Len(t, ds.OperationsOn("city"), 1)
	assert.Len(t, ds.OperationsOn("city_enc"), 1)
	assert.Len(t, ds.OperationsOn("city_enc2"), 1)
	assert.Empty(t, ds.OperationsOn("age"))

	derived := ds.DerivedColumns()
	assert.True(t, derived.Contains("city_enc"))
	assert.True(t, derived.Contains("city_enc2"))

	// city is not metadata, so no propagation
	assert.False(t, ds.MetadataColumns().Contains("city_enc"))
}

func TestAddOperationPropagatesMetadata(t *testing.T) {
	ds := ledgerDataset(t)
	ds.AddOperation(Operation{
		Type:           OpValueTransform,
		Columns:        []string{"id"},
		DerivedColumns: []string{"id_hash"},
	})
	assert.True(t, ds.MetadataColumns().Contains("id_hash"),
		"derivations of metadata only are metadata")
}

func TestAddOperationKeepsDuplicates(t *testing.T) {
	ds := ledgerDataset(t)
	op := Operation{Type: OpFillNA, Columns: []string{"age"}}
	ds.AddOperation(op)
	ds.AddOperation(op)
	assert.Len(t, ds.OperationsOn("age"), 2, "registration never dedups")
}

func TestFindOperation(t *testing.T) {
	ds := ledgerDataset(t)
	ds.AddOperation(Operation{
		Type:           OpCategoricalEncoding,
		Columns:        []string{"city"},
		DerivedColumns: []string{"city_enc"},
		EncoderID:      "enc-1",
	})

	// by source with wildcard derived
	found, err := ds.FindOperation(Operation{
		Type:    OpCategoricalEncoding,
		Columns: []string{"city"},
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"city_enc"}, found.DerivedColumns)

	// by derived
	found, err = ds.FindOperation(Operation{
		DerivedColumns: []string{"city_enc"},
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"city"}, found.Columns)

	// no match
	found, err = ds.FindOperation(Operation{
		Type:    OpBinSplitting,
		Columns: []string{"city"},
	})
	require.NoError(t, err)
	assert.Nil(t, found)

	// unknown column
	found, err = ds.FindOperation(Operation{Columns: []string{"nope"}})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindOperationInvalidQuery(t *testing.T) {
	ds := ledgerDataset(t)
	_, err := ds.FindOperation(Operation{Type: OpFillNA})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestFindOperationAmbiguous(t *testing.T) {
	ds := ledgerDataset(t)
	op := Operation{
		Type:           OpCategoricalEncoding,
		Columns:        []string{"city"},
		DerivedColumns: []string{"city_enc"},
	}
	ds.AddOperation(op)
	ds.AddOperation(op)

	_, err := ds.FindOperation(Operation{Columns: []string{"city"}})
	require.Error(t, err)
	var ambiguous *AmbiguousOperationError
	require.True(t, errors.As(err, &ambiguous))
	assert.Len(t, ambiguous.Matches, 2, "every match is surfaced")
	assert.Contains(t, err.Error(), "narrow the query")
}

func TestEncodedColumnsOf(t *testing.T) {
	ds := ledgerDataset(t)
	ds.AddOperation(Operation{
		Type:           OpCategoricalEncoding,
		Columns:        []string{"city"},
		DerivedColumns: []string{"city_enc"},
		EncoderID:      "enc-1",
	})

	derived, err := ds.EncodedColumnsOf("city", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"city_enc"}, derived)

	derived, err = ds.EncodedColumnsOf("city", "enc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"city_enc"}, derived)

	derived, err = ds.EncodedColumnsOf("city", "enc-other")
	require.NoError(t, err)
	assert.Nil(t, derived)

	derived, err = ds.EncodedColumnsOf("age", "")
	require.NoError(t, err)
	assert.Nil(t, derived)
}

func TestOriginalColumnsOf(t *testing.T) {
	ds := ledgerDataset(t)
	ds.AddOperation(Operation{
		Type:           OpCategoricalEncoding,
		Columns:        []string{"city"},
		DerivedColumns: []string{"city_enc"},
	})

	original, err := ds.OriginalColumnsOf("city_enc", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, original)

	original, err = ds.OriginalColumnsOf("city", "")
	require.NoError(t, err)
	assert.Nil(t, original, "a source column has no original")
}

func TestSelfReferentialEncodingResolvesToNothing(t *testing.T) {
	ds := ledgerDataset(t)
	ds.AddOperation(Operation{
		Type:           OpCategoricalEncoding,
		Columns:        []string{"city"},
		DerivedColumns: []string{"city"},
	})

	derived, err := ds.EncodedColumnsOf("city", "")
	require.NoError(t, err)
	assert.Nil(t, derived)

	original, err := ds.OriginalColumnsOf("city", "")
	require.NoError(t, err)
	assert.Nil(t, original)
}

func TestColumnsNeedingEncoding(t *testing.T) {
	f := frame.New()
	const rows = 12
	a := make([]any, rows)
	b := make([]any, rows)
	for i := 0; i < rows; i++ {
		a[i] = fmt.Sprintf("a%d", i%3)
		b[i] = fmt.Sprintf("b%d", i%4)
	}
	require.NoError(t, f.AddColumn("cat_a", a))
	require.NoError(t, f.AddColumn("cat_b", b))
	ds := New(f)

	needing, err := ds.ColumnsNeedingEncoding()
	require.NoError(t, err)
	assert.Equal(t, []string{"cat_a", "cat_b"}, needing.Sorted())

	ds.AddOperation(Operation{
		Type:           OpCategoricalEncoding,
		Columns:        []string{"cat_a"},
		DerivedColumns: []string{"cat_a_enc"},
	})

	needing, err = ds.ColumnsNeedingEncoding()
	require.NoError(t, err)
	assert.Equal(t, []string{"cat_b"}, needing.Sorted())
}

func TestEncodedValuesMap(t *testing.T) {
	ds := ledgerDataset(t)
	ds.AddOperation(Operation{
		Type:           OpCategoricalEncoding,
		Columns:        []string{"city"},
		DerivedColumns: []string{"city_enc"},
		EncodedValues:  map[int]string{0: "a", 1: "b"},
	})

	values := ds.EncodedValuesMap("city_enc")
	assert.Equal(t, map[int]string{0: "a", 1: "b"}, values)

	assert.Nil(t, ds.EncodedValuesMap("untouched"), "soft failure: nil, no error")
}

func TestOperationLogOrder(t *testing.T) {
	ds := ledgerDataset(t)
	ds.AddOperation(Operation{Type: OpFillNA, Columns: []string{"age"}})
	ds.AddOperation(Operation{Type: OpBinSplitting, Columns: []string{"age"}, DerivedColumns: []string{"age_bin"}})

	log := ds.OperationLog()
	require.Len(t, log, 2)
	assert.Equal(t, OpFillNA, log[0].Type)
	assert.Equal(t, OpBinSplitting, log[1].Type)
}

func TestCopyDetachesLedger(t *testing.T) {
	ds := ledgerDataset(t)
	ds.AddOperation(Operation{Type: OpFillNA, Columns: []string{"age"}})

	cp := ds.Copy()
	cp.AddOperation(Operation{Type: OpFillNA, Columns: []string{"city"}})

	assert.Len(t, ds.OperationLog(), 1)
	assert.Len(t, cp.OperationLog(), 2)
}
