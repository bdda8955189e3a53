package export

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"tripdash/internal/adapter/storage"
	"tripdash/internal/domain/trip"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	return NewExporter(newTestStore(t), 0)
}

func newTestStore(t *testing.T) trip.Store {
	t.Helper()
	store, err := storage.LoadTripRecords([][]string{
		{"Lat", "Lon", "Base", "day", "weekday", "hour", "month"},
		{"40.70", "-73.99", "B02512", "7", "Monday", "0", "4"},
		{"40.72", "-73.97", "Unter", "7", "Monday", "0", "4"},
		{"40.76", "-73.96", "Weiter", "8", "Tuesday", "8", "4"},
		{"40.73", "-73.95", "Unter", "5", "Monday", "0", "5"},
	})
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	return store
}

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteXLSX(t *testing.T) {
	e := newTestExporter(t)

	month := trip.Month(4)
	base := trip.Unter
	q := trip.Query{Month: &month, Base: &base}

	var buf bytes.Buffer
	res, err := e.WriteXLSX(context.Background(), q, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows != 2 || res.Truncated {
		t.Fatalf("unexpected result %+v", res)
	}

	f := openWorkbook(t, &buf)
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{TripsSheet, SummarySheet}) {
		t.Fatalf("unexpected sheets %v", got)
	}

	rows, err := f.GetRows(TripsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header and 2 rows, got %d", len(rows))
	}
	want := []string{"Month", "Day", "Weekday", "Hour", "Base", "Lat", "Lon"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Fatalf("header %v", rows[0])
	}
	for _, row := range rows[1:] {
		if row[0] != "4" || row[2] != "Monday" || row[4] != "Unter" {
			t.Fatalf("unexpected row %v", row)
		}
	}

	summary, err := f.GetRows(SummarySheet)
	if err != nil {
		t.Fatal(err)
	}
	if summary[0][1] != "month=April base=Unter" || summary[1][1] != "2" || summary[2][1] != "no" {
		t.Fatalf("unexpected summary %v", summary)
	}
}

func TestWriteXLSXEmptySelection(t *testing.T) {
	e := newTestExporter(t)

	base := trip.Schmecken
	var buf bytes.Buffer
	res, err := e.WriteXLSX(context.Background(), trip.Query{Base: &base}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows != 0 {
		t.Fatalf("exported %d rows, want none", res.Rows)
	}

	rows, err := openWorkbook(t, &buf).GetRows(TripsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("want header only, got %d rows", len(rows))
	}
}

func TestWriteXLSXAll(t *testing.T) {
	e := newTestExporter(t)

	var buf bytes.Buffer
	res, err := e.WriteXLSX(context.Background(), trip.Query{}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows != 4 || res.Truncated {
		t.Fatalf("unexpected result %+v", res)
	}

	summary, _ := openWorkbook(t, &buf).GetRows(SummarySheet)
	if summary[0][1] != "all" {
		t.Fatalf("unexpected filters cell %q", summary[0][1])
	}
}

func TestWriteXLSXRowLimit(t *testing.T) {
	store := newTestStore(t)

	cases := []struct {
		name      string
		maxRows   int
		wantRows  int
		truncated bool
	}{
		{"below selection", 2, 2, true},
		{"equal to selection", 4, 4, false},
		{"above selection", 10, 4, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			res, err := NewExporter(store, c.maxRows).WriteXLSX(context.Background(), trip.Query{}, &buf)
			if err != nil {
				t.Fatal(err)
			}
			if res.Rows != c.wantRows || res.Truncated != c.truncated {
				t.Fatalf("got %+v, want %d rows truncated=%t", res, c.wantRows, c.truncated)
			}

			f := openWorkbook(t, &buf)
			rows, err := f.GetRows(TripsSheet)
			if err != nil {
				t.Fatal(err)
			}
			if len(rows) != c.wantRows+1 {
				t.Fatalf("want header and %d rows, got %d", c.wantRows, len(rows))
			}

			summary, err := f.GetRows(SummarySheet)
			if err != nil {
				t.Fatal(err)
			}
			if got := summary[2][1]; strings.HasPrefix(got, "yes") != c.truncated {
				t.Fatalf("truncated cell %q", got)
			}
		})
	}
}

func TestNewExporterClampsRowLimit(t *testing.T) {
	store := newTestStore(t)

	for _, n := range []int{-1, 0, MaxRows + 1} {
		if got := NewExporter(store, n).maxRows; got != MaxRows {
			t.Fatalf("NewExporter(%d) cap = %d, want %d", n, got, MaxRows)
		}
	}
	if got := NewExporter(store, 5).maxRows; got != 5 {
		t.Fatalf("cap = %d, want 5", got)
	}
}

func TestWriteXLSXCanceled(t *testing.T) {
	e := newTestExporter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.WriteXLSX(ctx, trip.Query{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
