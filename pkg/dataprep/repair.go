package dataprep

import (
	"strconv"
	"strings"
	"time"
)

// Row-level string repair for raw CSV cells, applied before a frame is
// built. These fix common entry artifacts (decimal commas, thousands
// separators, assorted date layouts) and do not touch the operation ledger.

// missing markers recognized in raw cells, matching the loader's set.
func isMissingToken(s string) bool {
	return s == "" || s == "NA" || s == "NaN" || s == "nan" || s == "null"
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// RepairNumericString normalizes a raw numeric cell: surrounding space is
// trimmed, thousands separators are dropped and a decimal comma becomes a
// decimal point. The input is returned unchanged when the repaired form
// still does not parse as a number.
func RepairNumericString(s string) string {
	t := strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(t, 64); err == nil {
		return t
	}

	repaired := t
	switch {
	case strings.Contains(t, ",") && strings.Contains(t, "."):
		// 1.234,56 style: dots are thousands separators
		if strings.LastIndex(t, ",") > strings.LastIndex(t, ".") {
			repaired = strings.ReplaceAll(t, ".", "")
			repaired = strings.Replace(repaired, ",", ".", 1)
		} else {
			// 1,234.56 style
			repaired = strings.ReplaceAll(t, ",", "")
		}
	case strings.Count(t, ",") == 1:
		repaired = strings.Replace(t, ",", ".", 1)
	case strings.Contains(t, ","):
		repaired = strings.ReplaceAll(t, ",", "")
	}
	if _, err := strconv.ParseFloat(repaired, 64); err == nil {
		return repaired
	}
	return s
}

// RepairDateString parses a raw date cell against the known layouts and
// returns it in ISO form (2006-01-02). Unparseable input is returned
// unchanged.
func RepairDateString(s string) string {
	t := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, t); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return s
}

// RepairColumn applies a repair function to every cell of a raw column,
// leaving missing markers alone.
func RepairColumn(raw []string, repair func(string) string) []string {
	out := make([]string, len(raw))
	for i, s := range raw {
		if isMissingToken(s) {
			out[i] = s
			continue
		}
		out[i] = repair(s)
	}
	return out
}
