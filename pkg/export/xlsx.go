package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/gridstatus/core/model"
)

// SheetName is the worksheet holding exported records.
const SheetName = "data"

// WriteXLSX writes recs to a single-sheet workbook. Times are written in
// RFC 3339 so the timezone offset is kept.
func WriteXLSX(w io.Writer, recs []model.Record) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if len(recs) > 0 {
		if err := setRow(f, 1, toAny(recs[0].Columns())); err != nil {
			return err
		}
	}
	for i, r := range recs {
		vals := r.Values()
		row := make([]any, len(vals))
		for j, v := range vals {
			row[j] = xlsxValue(v)
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func xlsxValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return v
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
