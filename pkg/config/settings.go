// Package config holds tunable analysis settings with TOML file loading.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Settings controls the classification heuristics.
type Settings struct {
	// CategoricalThreshold is the expected minimum repetition count per
	// category: a column is categorical when its distinct count is below
	// nonMissingCount / CategoricalThreshold (integer division).
	CategoricalThreshold int `toml:"categorical_threshold"`

	// CategoricalMinUnique is the absolute cardinality below which a column
	// is categorical regardless of table size.
	CategoricalMinUnique int `toml:"categorical_min_unique"`

	// TrivialNaNRatio is the missing-value ratio above which a column counts
	// as trivial.
	TrivialNaNRatio float64 `toml:"trivial_nan_ratio"`
}

// Default returns the stock settings.
func Default() Settings {
	return Settings{
		CategoricalThreshold: 300,
		CategoricalMinUnique: 7,
		TrivialNaNRatio:      0.999,
	}
}

// LoadFile reads settings from a TOML file, keeping defaults for keys the
// file does not set.
func LoadFile(path string) (Settings, error) {
	s := Default()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, errors.Wrapf(err, "config: loading %s", path)
	}
	if s.CategoricalThreshold <= 0 {
		return Settings{}, errors.Newf("config: categorical_threshold must be positive, got %d", s.CategoricalThreshold)
	}
	return s, nil
}
