package dataset

// The operation ledger maps each column name to the ordered list of
// operations that touched it. Every registered operation fans out to the
// list of each of its source and derived columns, and the fan-out happens
// under the dataset mutex, so readers never observe a half-registered
// operation.

// AddOperation registers op in the ledger. The record is appended to the
// list of every source and every derived column, derived columns join the
// global derived set, and when every source column is metadata the derived
// columns become metadata too (derivations of identifying columns identify
// as well). Duplicate registrations are appended as-is; callers wanting
// idempotence check FindOperation first.
func (d *Dataset) AddOperation(op Operation) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := &op
	// A column named on both sides of one operation gets a single ledger
	// entry, so the self-referential guard in the pair resolvers sees one
	// match instead of a spurious ambiguity.
	appended := make(ColumnSet)
	sourcesAllMetadata := true
	for _, name := range op.Columns {
		d.ops[name] = append(d.ops[name], rec)
		appended.Add(name)
		if !d.metadata.Contains(name) {
			sourcesAllMetadata = false
		}
	}
	if op.DerivedColumns != nil {
		for _, name := range op.DerivedColumns {
			if !appended.Contains(name) {
				d.ops[name] = append(d.ops[name], rec)
				appended.Add(name)
			}
			d.derived.Add(name)
		}
		if sourcesAllMetadata {
			for _, name := range op.DerivedColumns {
				d.metadata.Add(name)
			}
			d.invalidateRoles()
		}
	}
	d.oplog = append(d.oplog, rec)
}

// OperationLog returns every registered operation in registration order.
func (d *Dataset) OperationLog() []Operation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Operation, len(d.oplog))
	for i, rec := range d.oplog {
		out[i] = *rec
	}
	return out
}

// OperationsOn returns the operations recorded against one column, in
// application order.
func (d *Dataset) OperationsOn(column string) []Operation {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.ops[column]
	out := make([]Operation, len(list))
	for i, rec := range list {
		out[i] = *rec
	}
	return out
}

// FindOperation looks up a previously registered operation matching query
// under wildcard semantics. The scanned list is the one of the first source
// column when sources are given, else the first derived column; a query
// specifying neither fails with ErrInvalidQuery.
//
// No match returns (nil, nil). More than one match fails with
// AmbiguousOperationError carrying every match.
func (d *Dataset) FindOperation(query Operation) (*Operation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var list []*Operation
	switch {
	case len(query.Columns) > 0:
		list = d.ops[query.Columns[0]]
	case len(query.DerivedColumns) > 0:
		list = d.ops[query.DerivedColumns[0]]
	default:
		return nil, ErrInvalidQuery
	}

	var matches []*Operation
	for _, rec := range list {
		if rec.Matches(query) {
			matches = append(matches, rec)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		found := *matches[0]
		return &found, nil
	default:
		return nil, &AmbiguousOperationError{Matches: matches}
	}
}

// EncodedColumnsOf returns the columns holding the encoded values derived
// from column, or nil when no categorical encoding of it was registered.
// encoderID narrows the lookup to one encoder; pass "" to match any.
// An operation listing column on its derived side as well is treated as
// not found, so a self-referential encoding never resolves to itself.
func (d *Dataset) EncodedColumnsOf(column string, encoderID string) ([]string, error) {
	query := Operation{
		Type:      OpCategoricalEncoding,
		Columns:   []string{column},
		EncoderID: encoderID,
	}
	op, err := d.FindOperation(query)
	if err != nil {
		return nil, err
	}
	if op == nil || containsName(op.DerivedColumns, column) {
		return nil, nil
	}
	return append([]string(nil), op.DerivedColumns...), nil
}

// OriginalColumnsOf is the inverse of EncodedColumnsOf: it returns the
// source columns of the categorical encoding that produced column, or nil
// when column was not produced by one.
func (d *Dataset) OriginalColumnsOf(column string, encoderID string) ([]string, error) {
	query := Operation{
		Type:           OpCategoricalEncoding,
		DerivedColumns: []string{column},
		EncoderID:      encoderID,
	}
	op, err := d.FindOperation(query)
	if err != nil {
		return nil, err
	}
	if op == nil || containsName(op.Columns, column) {
		return nil, nil
	}
	return append([]string(nil), op.Columns...), nil
}

// ColumnsNeedingEncoding returns the categorical columns (string and
// numeric) with no findable encoding operation yet.
func (d *Dataset) ColumnsNeedingEncoding() (ColumnSet, error) {
	snap, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	categorical := snap.strCategorical.Union(snap.numCategorical)
	out := make(ColumnSet)
	for _, name := range categorical.Sorted() {
		encoded, err := d.EncodedColumnsOf(name, "")
		if err != nil {
			return nil, err
		}
		if encoded == nil {
			out.Add(name)
		}
	}
	return out, nil
}

// EncodedValuesMap returns the code-to-category map of the operation that
// created column. The first recorded operation on a derived column is the
// one that produced it. A column with no recorded operations is reported
// softly: logged, nil result.
func (d *Dataset) EncodedValuesMap(column string) map[int]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.ops[column]
	if len(list) == 0 {
		d.log.Infow("column has no recorded operations", "column", column)
		return nil
	}
	values := list[0].EncodedValues
	if values == nil {
		return nil
	}
	out := make(map[int]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
