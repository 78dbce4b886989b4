// Package export writes records as CSV, JSON, XLSX or an HTML chart.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/gridstatus/core/model"
)

// Format is an output format accepted by Write.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// Write dispatches to the writer of format f.
func Write(w io.Writer, f Format, recs []model.Record) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, recs)
	case FormatJSON:
		return WriteJSON(w, recs)
	case FormatXLSX:
		return WriteXLSX(w, recs)
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// WriteCSV writes recs with a header taken from the first record. Missing
// values are empty cells.
func WriteCSV(w io.Writer, recs []model.Record) error {
	cw := csv.NewWriter(w)
	if len(recs) == 0 {
		cw.Flush()
		return cw.Error()
	}
	if err := cw.Write(recs[0].Columns()); err != nil {
		return err
	}
	for _, r := range recs {
		vals := r.Values()
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = formatCell(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes recs as an array of objects keyed by column name. NaN
// values are encoded as null.
func WriteJSON(w io.Writer, recs []model.Record) error {
	rows := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		cols, vals := r.Columns(), r.Values()
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = jsonValue(vals[i])
		}
		rows = append(rows, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func jsonValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
