// internal/adapter/storage/loader.go

package storage

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"tripdash/internal/domain/trip"
)

// dateTimeLayouts are the accepted formats of the Date/Time column
var dateTimeLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
}

// columnTypes pins the types gota would otherwise have to guess
var columnTypes = map[string]series.Type{
	ColDateTime: series.String,
	ColLat:      series.Float,
	ColLon:      series.Float,
	ColBase:     series.String,
	ColDay:      series.Int,
	ColWeekday:  series.String,
	ColHour:     series.Int,
	ColMonth:    series.Int,
}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.WithTypes(columnTypes),
		dataframe.NaNValues([]string{"", "NA", "NaN", "<nil>"}),
	}
}

// LoadTripStore reads a .csv or .xlsx dataset and returns a store over it.
// sheet selects the worksheet of an .xlsx file; empty means the first one.
func LoadTripStore(path, sheet string) (*TripStore, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open dataset: %w", err)
		}
		defer f.Close()
		return ReadTripCSV(f)

	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open dataset: %w", err)
		}
		defer f.Close()
		return readTripWorkbook(f, sheet)

	default:
		return nil, fmt.Errorf("unsupported dataset format %q", ext)
	}
}

// ReadTripCSV loads a dataset from CSV with a header row
func ReadTripCSV(r io.Reader) (*TripStore, error) {
	df := dataframe.ReadCSV(r, loadOptions()...)
	if df.Err != nil {
		return nil, fmt.Errorf("error reading CSV dataset: %w", df.Err)
	}
	return prepare(df)
}

// LoadTripRecords loads a dataset from rows of strings, the first being the header.
// Short rows are padded with empty cells.
func LoadTripRecords(records [][]string) (*TripStore, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}

	width := len(records[0])
	padded := make([][]string, len(records))
	for i, row := range records {
		if len(row) >= width {
			padded[i] = row[:width]
			continue
		}
		p := make([]string, width)
		copy(p, row)
		padded[i] = p
	}

	df := dataframe.LoadRecords(padded, loadOptions()...)
	if df.Err != nil {
		return nil, fmt.Errorf("error loading dataset records: %w", df.Err)
	}
	return prepare(df)
}

func readTripWorkbook(f *excelize.File, sheet string) (*TripStore, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q: %w", sheet, err)
	}

	return LoadTripRecords(rows)
}

// prepare derives missing calendar columns, normalizes labels and drops
// rows whose weekday is not one of the seven known labels.
func prepare(df dataframe.DataFrame) (*TripStore, error) {
	df = deriveCalendar(df)
	if df.Err != nil {
		return nil, fmt.Errorf("error deriving calendar columns: %w", df.Err)
	}

	if hasColumn(df, ColBase) {
		bases := df.Col(ColBase).Records()
		for i, b := range bases {
			if name, ok := trip.ParseBase(b); ok {
				bases[i] = string(name)
			}
		}
		df = df.Mutate(series.New(bases, series.String, ColBase))
	}

	if hasColumn(df, ColWeekday) {
		weekdays := df.Col(ColWeekday).Records()
		for i, w := range weekdays {
			if d, ok := trip.ParseWeekday(w); ok {
				weekdays[i] = string(d)
			}
		}
		df = df.Mutate(series.New(weekdays, series.String, ColWeekday))

		known := make([]string, len(trip.Weekdays))
		for i, w := range trip.Weekdays {
			known[i] = string(w)
		}

		total := df.Nrow()
		df = df.Filter(dataframe.F{Colname: ColWeekday, Comparator: series.In, Comparando: known})
		if df.Err == nil && df.Nrow() < total {
			log.Printf("Dropped %d trips with an unknown weekday", total-df.Nrow())
		}
	}

	if df.Err != nil {
		return nil, fmt.Errorf("error normalizing dataset: %w", df.Err)
	}

	return NewTripStore(df)
}

// deriveCalendar fills month, day, weekday and hour from Date/Time when the
// dataset lacks them
func deriveCalendar(df dataframe.DataFrame) dataframe.DataFrame {
	if !hasColumn(df, ColDateTime) {
		return df
	}

	missing := false
	for _, col := range []string{ColMonth, ColDay, ColWeekday, ColHour} {
		if !hasColumn(df, col) {
			missing = true
			break
		}
	}
	if !missing {
		return df
	}

	stamps := df.Col(ColDateTime).Records()
	n := len(stamps)
	months := make([]string, n)
	days := make([]string, n)
	weekdays := make([]string, n)
	hours := make([]string, n)

	for i, s := range stamps {
		t, ok := parseDateTime(s)
		if !ok {
			months[i], days[i], weekdays[i], hours[i] = "NaN", "NaN", "", "NaN"
			continue
		}
		months[i] = strconv.Itoa(int(t.Month()))
		days[i] = strconv.Itoa(t.Day())
		weekdays[i] = t.Weekday().String()
		hours[i] = strconv.Itoa(t.Hour())
	}

	if !hasColumn(df, ColMonth) {
		df = df.Mutate(series.New(months, series.Int, ColMonth))
	}
	if !hasColumn(df, ColDay) {
		df = df.Mutate(series.New(days, series.Int, ColDay))
	}
	if !hasColumn(df, ColWeekday) {
		df = df.Mutate(series.New(weekdays, series.String, ColWeekday))
	}
	if !hasColumn(df, ColHour) {
		df = df.Mutate(series.New(hours, series.Int, ColHour))
	}

	return df
}

func parseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
