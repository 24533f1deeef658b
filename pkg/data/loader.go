// Package data loads CSV files into frames, sniffing a Go cell type per
// column.
package data

import (
	"bufio"
	"encoding/csv"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"datakit/pkg/frame"
)

// missing markers recognized in raw CSV cells.
func isMissingToken(s string) bool {
	return s == "" || s == "NA" || s == "NaN" || s == "nan" || s == "null"
}

// LoadCSV reads a headered CSV file into a frame. A missing file or read
// failure is a soft failure: it is logged and nil is returned, so batch
// pipelines iterating over many files can continue.
func LoadCSV(path string, log *zap.SugaredLogger) *frame.Frame {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	file, err := os.Open(path)
	if err != nil {
		log.Errorw("opening csv", "path", path, "error", err)
		return nil
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	records, err := reader.ReadAll()
	if err != nil {
		log.Errorw("reading csv", "path", path, "error", err)
		return nil
	}
	if len(records) == 0 {
		log.Errorw("csv has no header row", "path", path)
		return nil
	}
	fr, err := FromRecords(records[0], records[1:])
	if err != nil {
		log.Errorw("building frame from csv", "path", path, "error", err)
		return nil
	}
	log.Infow("data imported from file", "path", path,
		"rows", fr.NumRows(), "columns", fr.NumCols())
	return fr
}

// FromRecords builds a frame from a header row and data rows. Every column
// is sniffed independently: if all non-missing cells parse as bools the
// column is bool, else all-integers, else all-floats, else strings.
func FromRecords(header []string, rows [][]string) (*frame.Frame, error) {
	fr := frame.New()
	for j, name := range header {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if j >= len(row) {
				return nil, errors.Newf("data: row %d has %d cells, want %d", i, len(row), len(header))
			}
			raw[i] = row[j]
		}
		if err := fr.AddColumn(name, sniffColumn(raw)); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

// sniffColumn converts raw cells to the narrowest shared Go type.
func sniffColumn(raw []string) []any {
	isBool, isInt, isFloat := true, true, true
	for _, s := range raw {
		if isMissingToken(s) {
			continue
		}
		if s != "true" && s != "false" {
			isBool = false
		}
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			isFloat = false
		}
	}

	vals := make([]any, len(raw))
	for i, s := range raw {
		if isMissingToken(s) {
			vals[i] = nil
			continue
		}
		switch {
		case isBool:
			vals[i] = s == "true"
		case isInt:
			n, _ := strconv.ParseInt(s, 10, 64)
			vals[i] = n
		case isFloat:
			f, _ := strconv.ParseFloat(s, 64)
			vals[i] = f
		default:
			vals[i] = s
		}
	}
	return vals
}
