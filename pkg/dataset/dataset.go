// Package dataset analyzes a tabular frame: it classifies every column into
// semantic buckets (constant, numerical, categorical, mixed, ...) and keeps
// an append-only ledger of the feature operations applied to each column, so
// later pipeline steps can ask what was already derived instead of
// recomputing it.
package dataset

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"datakit/pkg/config"
	"datakit/pkg/frame"
)

// Dataset wraps a frame with column-role bookkeeping, a cached semantic
// bucket snapshot and the operation ledger. All methods are safe for
// concurrent use; registration and the detector's in-place retag are
// serialized behind one mutex.
type Dataset struct {
	mu sync.Mutex

	fr       *frame.Frame
	metadata ColumnSet
	features ColumnSet
	settings config.Settings
	log      *zap.SugaredLogger

	// ledger state
	ops     map[string][]*Operation
	oplog   []*Operation // registration order, for persistence
	derived ColumnSet

	// cached bucket snapshot, invalidated on role or structural change
	snap     *columnsByType
	snapGen  uint64
	roleGen  uint64
	snapRole uint64
}

// Option configures a Dataset at construction time.
type Option func(*Dataset)

// WithMetadataColumns marks identifying, non-feature columns.
func WithMetadataColumns(names ...string) Option {
	return func(d *Dataset) {
		for _, n := range names {
			d.metadata.Add(n)
		}
	}
}

// WithFeatureColumns overrides the feature set. Without this option every
// frame column that is not metadata is a feature.
func WithFeatureColumns(names ...string) Option {
	return func(d *Dataset) {
		d.features = NewColumnSet(names...)
	}
}

// WithSettings overrides the default analysis settings.
func WithSettings(s config.Settings) Option {
	return func(d *Dataset) { d.settings = s }
}

// WithLogger attaches a logger. The default is a nop logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(d *Dataset) {
		if log != nil {
			d.log = log
		}
	}
}

// New builds a Dataset over fr. The frame stays owned by the caller, but
// classification may retag column dtypes in place (see the categorical
// detector), so a frame should be classified by at most one Dataset.
func New(fr *frame.Frame, opts ...Option) *Dataset {
	d := &Dataset{
		fr:       fr,
		metadata: make(ColumnSet),
		settings: config.Default(),
		log:      zap.NewNop().Sugar(),
		ops:      make(map[string][]*Operation),
		derived:  make(ColumnSet),
	}
	for _, o := range opts {
		o(d)
	}
	if d.features == nil {
		d.features = make(ColumnSet)
		for _, name := range fr.ColumnNames() {
			if !d.metadata.Contains(name) {
				d.features.Add(name)
			}
		}
	}
	return d
}

// Frame returns the underlying frame.
func (d *Dataset) Frame() *frame.Frame { return d.fr }

// Settings returns the analysis settings in effect.
func (d *Dataset) Settings() config.Settings { return d.settings }

// MetadataColumns returns the identifying, non-feature columns.
func (d *Dataset) MetadataColumns() ColumnSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.metadata.Copy()
}

// FeatureColumns returns the feature columns.
func (d *Dataset) FeatureColumns() ColumnSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.features.Copy()
}

// DerivedColumns returns every column produced by a registered operation.
func (d *Dataset) DerivedColumns() ColumnSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.derived.Copy()
}

// NaNColumns returns the feature columns whose missing count exceeds
// ratio * rowCount. ratio is in [0,1]; with the default 1 only fully
// missing columns qualify. The scan is recomputed on every call.
func (d *Dataset) NaNColumns(ratio float64) ColumnSet {
	d.mu.Lock()
	features := d.features.Copy()
	d.mu.Unlock()

	out := make(ColumnSet)
	rows := d.fr.NumRows()
	for name := range features {
		col, ok := d.fr.Column(name)
		if !ok {
			continue
		}
		if float64(col.MissingCount()) > ratio*float64(rows) {
			out.Add(name)
		}
	}
	return out
}

// ConstantColumns returns the feature columns holding exactly one distinct
// state, counting missing as a distinguishable state: a fully missing
// column is constant, a column with one value plus missing cells is not.
func (d *Dataset) ConstantColumns() ColumnSet {
	d.mu.Lock()
	features := d.features.Copy()
	d.mu.Unlock()

	out := make(ColumnSet)
	for name := range features {
		col, ok := d.fr.Column(name)
		if !ok {
			continue
		}
		if col.NUnique(false) == 1 {
			out.Add(name)
		}
	}
	return out
}

// TrivialColumns returns the columns that are almost entirely missing or
// hold a single repeated value.
func (d *Dataset) TrivialColumns() ColumnSet {
	return d.NaNColumns(d.settings.TrivialNaNRatio).Union(d.ConstantColumns())
}

// ColumnNamesByIndex maps column positions to names.
func (d *Dataset) ColumnNamesByIndex(ids ...int) ColumnSet {
	names := d.fr.ColumnNames()
	out := make(ColumnSet)
	for _, id := range ids {
		if id >= 0 && id < len(names) {
			out.Add(names[id])
		}
	}
	return out
}

// Describe returns a human-readable bucket summary.
func (d *Dataset) Describe() (string, error) {
	snap, err := d.snapshot()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\nColumns with many NaN: %d",
		snap, len(d.NaNColumns(d.settings.TrivialNaNRatio))), nil
}

// invalidateRoles must be called with the mutex held after a role-set
// change; the next snapshot access recomputes.
func (d *Dataset) invalidateRoles() { d.roleGen++ }

// Copy returns a deep copy: frame, roles and ledger are all duplicated, so
// non-inplace transformations can register operations without touching the
// original.
func (d *Dataset) Copy() *Dataset {
	d.mu.Lock()
	defer d.mu.Unlock()
	nd := &Dataset{
		fr:       d.fr.Copy(),
		metadata: d.metadata.Copy(),
		features: d.features.Copy(),
		settings: d.settings,
		log:      d.log,
		ops:      make(map[string][]*Operation, len(d.ops)),
		oplog:    append([]*Operation(nil), d.oplog...),
		derived:  d.derived.Copy(),
	}
	for name, list := range d.ops {
		nd.ops[name] = append([]*Operation(nil), list...)
	}
	return nd
}

// WithFrame rebinds the dataset to a new frame, keeping roles and ledger.
// When columns of the old frame are missing from the new one, the recorded
// operations on them survive; a warning is logged since their history now
// points at absent columns.
func (d *Dataset) WithFrame(fr *frame.Frame) *Dataset {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range d.fr.ColumnNames() {
		if !fr.Has(name) {
			d.log.Warnw("columns lost in frame swap, their operation history is kept",
				"column", name)
			break
		}
	}
	nd := &Dataset{
		fr:       fr,
		metadata: d.metadata.Copy(),
		features: d.features.Copy(),
		settings: d.settings,
		log:      d.log,
		ops:      make(map[string][]*Operation, len(d.ops)),
		oplog:    append([]*Operation(nil), d.oplog...),
		derived:  d.derived.Copy(),
	}
	for name, list := range d.ops {
		nd.ops[name] = append([]*Operation(nil), list...)
	}
	return nd
}
