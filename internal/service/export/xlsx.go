// internal/service/export/xlsx.go

package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tripdash/internal/domain/trip"
)

// Sheet names in exported workbooks
const (
	TripsSheet   = "Trips"
	SummarySheet = "Summary"
)

// MaxRows is the most trips one sheet can hold below its header row
const MaxRows = excelize.TotalRows - 1

// TripsHeader is the header row of the trips sheet
var TripsHeader = []interface{}{"Month", "Day", "Weekday", "Hour", "Base", "Lat", "Lon"}

// Result describes a finished export
type Result struct {
	Rows      int
	Truncated bool
}

// Exporter writes filtered trips as XLSX workbooks
type Exporter struct {
	store   trip.Store
	maxRows int
}

// NewExporter creates a new exporter over store. maxRows caps the trips
// written per workbook; values outside (0, MaxRows] mean MaxRows.
func NewExporter(store trip.Store, maxRows int) *Exporter {
	if maxRows <= 0 || maxRows > MaxRows {
		maxRows = MaxRows
	}
	return &Exporter{
		store:   store,
		maxRows: maxRows,
	}
}

// WriteXLSX writes the trips matching q to w. Selections larger than the row
// cap are cut at the cap and flagged in the summary sheet. An empty selection
// still produces the header row.
func (e *Exporter) WriteXLSX(ctx context.Context, q trip.Query, w io.Writer) (Result, error) {
	// One extra row tells a full selection from a truncated one
	q.Limit = e.maxRows + 1
	trips, err := e.store.Trips(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("error selecting trips: %w", err)
	}

	res := Result{Rows: len(trips)}
	if len(trips) > e.maxRows {
		trips = trips[:e.maxRows]
		res = Result{Rows: e.maxRows, Truncated: true}
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet is renamed rather than left empty
	if err := f.SetSheetName(f.GetSheetName(0), TripsSheet); err != nil {
		return Result{}, fmt.Errorf("error naming trips sheet: %w", err)
	}

	if err := writeTrips(ctx, f, trips); err != nil {
		return Result{}, err
	}

	if err := writeSummary(f, q, res); err != nil {
		return Result{}, err
	}

	if err := f.Write(w); err != nil {
		return Result{}, fmt.Errorf("error writing workbook: %w", err)
	}

	return res, nil
}

func writeTrips(ctx context.Context, f *excelize.File, trips []trip.Trip) error {
	sw, err := f.NewStreamWriter(TripsSheet)
	if err != nil {
		return fmt.Errorf("error opening trips sheet: %w", err)
	}

	if err := sw.SetRow("A1", TripsHeader); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	for i, t := range trips {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{int(t.Month), t.Day, string(t.Weekday), t.Hour, string(t.Base), t.Lat, t.Lon}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("error flushing trips sheet: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, q trip.Query, res Result) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("error creating summary sheet: %w", err)
	}

	truncated := "no"
	if res.Truncated {
		truncated = fmt.Sprintf("yes, more than %d trips matched", res.Rows)
	}

	rows := [][]interface{}{
		{"Filters", q.String()},
		{"Trips", res.Rows},
		{"Truncated", truncated},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("error writing summary: %w", err)
		}
	}
	return nil
}
