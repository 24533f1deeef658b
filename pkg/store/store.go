// Package store persists one dataset (frame, column roles and operation
// ledger) per SQLite container file.
package store

import (
	"database/sql"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"datakit/pkg/dataset"
)

// ErrAlreadyExists is returned by Save when the target file exists and
// overwrite was not requested.
var ErrAlreadyExists = errors.New("store: file already exists")

// ErrNotAContainer is returned by Load when the file was not produced by
// this container format.
var ErrNotAContainer = errors.New("store: file is not a dataset container")

// ErrMultipleObjects is returned by Load when the container holds other
// than exactly one stored object.
var ErrMultipleObjects = errors.New("store: container must hold exactly one object")

const objectName = "dataset"

// Save writes ds to a SQLite container file at path. An existing file fails
// with ErrAlreadyExists unless overwrite is set. The container is written to
// a temporary sibling and renamed over the target, so a failure mid-write
// never destroys an existing file.
func Save(ds *dataset.Dataset, path string, overwrite bool, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.Wrapf(ErrAlreadyExists, "%s", path)
	}

	payload, err := encodeDataset(ds)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := writeContainer(tmp, payload); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "store: replacing %s", path)
	}

	log.Infow("dataset saved", "path", path, "bytes", len(payload))
	return nil
}

func writeContainer(path string, payload []byte) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "store: clearing stale %s", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return errors.Wrapf(err, "store: opening %s", path)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return errors.Wrap(err, "store: setting busy timeout")
	}
	if _, err := db.Exec(
		"CREATE TABLE IF NOT EXISTS container (name TEXT PRIMARY KEY, payload BLOB NOT NULL)"); err != nil {
		return errors.Wrap(err, "store: creating container table")
	}
	if _, err := db.Exec(
		"INSERT INTO container (name, payload) VALUES (?, ?)", objectName, payload); err != nil {
		return errors.Wrap(err, "store: writing object")
	}
	return nil
}

// Load reads the dataset stored in the container file at path. A file not
// in the container format fails with ErrNotAContainer; a container holding
// other than exactly one object fails with ErrMultipleObjects.
func Load(path string, log *zap.SugaredLogger) (*dataset.Dataset, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "store: opening %s", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "store: opening %s", path)
	}
	defer db.Close()

	var tables int
	err = db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'container'").Scan(&tables)
	if err != nil {
		if isNotADatabase(err) {
			return nil, errors.Wrapf(ErrNotAContainer, "%s", path)
		}
		return nil, errors.Wrapf(err, "store: inspecting %s", path)
	}
	if tables != 1 {
		return nil, errors.Wrapf(ErrNotAContainer, "%s", path)
	}

	var objects int
	if err := db.QueryRow("SELECT COUNT(*) FROM container").Scan(&objects); err != nil {
		return nil, errors.Wrapf(err, "store: inspecting %s", path)
	}
	if objects != 1 {
		return nil, errors.Wrapf(ErrMultipleObjects, "%s holds %d objects", path, objects)
	}

	var payload []byte
	if err := db.QueryRow("SELECT payload FROM container").Scan(&payload); err != nil {
		return nil, errors.Wrapf(err, "store: reading object from %s", path)
	}

	ds, err := decodeDataset(payload)
	if err != nil {
		return nil, err
	}
	log.Infow("dataset loaded", "path", path,
		"rows", ds.Frame().NumRows(), "columns", ds.Frame().NumCols())
	return ds, nil
}

// isNotADatabase matches the sqlite driver's error for files it cannot
// read as a database. The driver returns its own error value, so string
// matching is the only hook.
func isNotADatabase(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not a database")
}
