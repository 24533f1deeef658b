// Package dataprep implements the transformation steps of the pipeline:
// categorical encoding, NaN filling, bin splitting and value transforms.
// Every transformation registers itself in the dataset's operation ledger,
// so later steps can look up what was already derived.
package dataprep

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"datakit/pkg/dataset"
	"datakit/pkg/frame"
)

// Encoder is the identity of one fitted categorical encoding. The ID is
// what ledger queries pin on; Values maps encoded codes back to the
// original categories.
type Encoder struct {
	ID      string
	Method  string
	Mapping map[string]int
	Values  map[int]string
}

// fitCategories assigns stable integer codes to the distinct non-missing
// values of a column, in first-appearance order like a streaming fit.
func fitCategories(col *frame.Column) (map[string]int, map[int]string) {
	mapping := map[string]int{}
	values := map[int]string{}
	for _, v := range col.Values() {
		if frame.IsMissing(v) {
			continue
		}
		key := frame.FormatValue(v)
		if _, ok := mapping[key]; !ok {
			code := len(mapping)
			mapping[key] = code
			values[code] = key
		}
	}
	return mapping, values
}

// ensureNotEncoded guards a fresh encoding against double application by
// consulting the ledger first.
func ensureNotEncoded(ds *dataset.Dataset, column string) error {
	encoded, err := ds.EncodedColumnsOf(column, "")
	if err != nil {
		return err
	}
	if encoded != nil {
		return errors.Newf("dataprep: column %q is already encoded into %v", column, encoded)
	}
	return nil
}

// LabelEncode encodes a column's categories as integer codes in a derived
// column (default name column+"_enc") and registers the operation. Missing
// cells stay missing.
func LabelEncode(ds *dataset.Dataset, column, derived string) (*Encoder, error) {
	col, ok := ds.Frame().Column(column)
	if !ok {
		return nil, errors.Newf("dataprep: column %q not in frame", column)
	}
	if err := ensureNotEncoded(ds, column); err != nil {
		return nil, err
	}
	if derived == "" {
		derived = column + "_enc"
	}

	mapping, values := fitCategories(col)
	out := make([]any, col.Len())
	for i, v := range col.Values() {
		if frame.IsMissing(v) {
			continue
		}
		out[i] = int64(mapping[frame.FormatValue(v)])
	}
	if err := ds.Frame().AddColumn(derived, out); err != nil {
		return nil, err
	}

	enc := &Encoder{ID: uuid.NewString(), Method: "label", Mapping: mapping, Values: values}
	ds.AddOperation(dataset.Operation{
		Type:           dataset.OpCategoricalEncoding,
		Columns:        []string{column},
		DerivedColumns: []string{derived},
		EncoderID:      enc.ID,
		EncodedValues:  values,
	})
	return enc, nil
}

// OneHotEncode expands a column into one 0/1 indicator column per category
// (named column+"_"+category, in lexical order) and registers a single
// operation producing all of them.
func OneHotEncode(ds *dataset.Dataset, column string) (*Encoder, error) {
	col, ok := ds.Frame().Column(column)
	if !ok {
		return nil, errors.Newf("dataprep: column %q not in frame", column)
	}
	if err := ensureNotEncoded(ds, column); err != nil {
		return nil, err
	}

	mapping, values := fitCategories(col)
	categories := make([]string, 0, len(mapping))
	for cat := range mapping {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	derived := make([]string, len(categories))
	for j, cat := range categories {
		name := column + "_" + cat
		out := make([]any, col.Len())
		for i, v := range col.Values() {
			if frame.IsMissing(v) {
				continue
			}
			if frame.FormatValue(v) == cat {
				out[i] = int64(1)
			} else {
				out[i] = int64(0)
			}
		}
		if err := ds.Frame().AddColumn(name, out); err != nil {
			return nil, err
		}
		derived[j] = name
	}

	enc := &Encoder{ID: uuid.NewString(), Method: "onehot", Mapping: mapping, Values: values}
	ds.AddOperation(dataset.Operation{
		Type:           dataset.OpCategoricalEncoding,
		Columns:        []string{column},
		DerivedColumns: derived,
		EncoderID:      enc.ID,
		EncodedValues:  values,
	})
	return enc, nil
}

// FrequencyEncode replaces each category with its relative frequency among
// the non-missing cells, in a derived column (default column+"_freq").
func FrequencyEncode(ds *dataset.Dataset, column, derived string) (*Encoder, error) {
	col, ok := ds.Frame().Column(column)
	if !ok {
		return nil, errors.Newf("dataprep: column %q not in frame", column)
	}
	if err := ensureNotEncoded(ds, column); err != nil {
		return nil, err
	}
	if derived == "" {
		derived = column + "_freq"
	}

	counts := map[string]float64{}
	total := 0.0
	for _, v := range col.Values() {
		if frame.IsMissing(v) {
			continue
		}
		counts[frame.FormatValue(v)]++
		total++
	}
	out := make([]any, col.Len())
	for i, v := range col.Values() {
		if frame.IsMissing(v) {
			continue
		}
		out[i] = counts[frame.FormatValue(v)] / total
	}
	if err := ds.Frame().AddColumn(derived, out); err != nil {
		return nil, err
	}

	mapping, values := fitCategories(col)
	enc := &Encoder{ID: uuid.NewString(), Method: "freq", Mapping: mapping, Values: values}
	ds.AddOperation(dataset.Operation{
		Type:           dataset.OpCategoricalEncoding,
		Columns:        []string{column},
		DerivedColumns: []string{derived},
		EncoderID:      enc.ID,
		EncodedValues:  values,
	})
	return enc, nil
}
