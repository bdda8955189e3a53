package chart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tripdash/internal/adapter/storage"
	"tripdash/internal/domain/chart"
	"tripdash/internal/domain/trip"
)

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	store, err := storage.LoadTripRecords([][]string{
		{"Lat", "Lon", "Base", "day", "weekday", "hour", "month"},
		{"40.70", "-73.99", "Unter", "7", "Monday", "0", "4"},
		{"40.72", "-73.97", "Unter", "7", "Monday", "0", "4"},
		{"40.75", "-73.97", "Hinter", "7", "Monday", "8", "4"},
		{"40.76", "-73.96", "Weiter", "8", "Tuesday", "8", "4"},
		{"40.70", "-74.00", "Unter", "12", "Saturday", "22", "4"},
		{"40.73", "-73.95", "Unter", "5", "Monday", "0", "5"},
		{"40.74", "-73.94", "Danach-NY", "6", "Tuesday", "17", "5"},
	})
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	return NewService(store, cfg)
}

func TestWeekdaysByMonth(t *testing.T) {
	s := newTestService(t, DefaultConfig())

	for _, m := range trip.Months {
		fig, err := s.WeekdaysByMonth(context.Background(), m)
		if err != nil {
			t.Fatal(err)
		}
		if len(fig.Data) != 1 || fig.Data[0].Type != "bar" {
			t.Fatalf("month %d: unexpected traces %+v", m, fig.Data)
		}
		tr := fig.Data[0]
		if len(tr.X) != 7 || tr.X[0] != "Monday" || tr.X[6] != "Sunday" {
			t.Fatalf("month %d: unexpected x %v", m, tr.X)
		}
	}

	fig, _ := s.WeekdaysByMonth(context.Background(), 4)
	sum := 0.0
	for _, v := range fig.Data[0].Y {
		sum += v
	}
	if sum != 5 {
		t.Fatalf("april bar counts should sum to 5, got %v", sum)
	}
	if fig.Layout.Title.Text != "Number of rides for days of the week" || fig.Layout.Width != 600 || fig.Layout.Height != 400 {
		t.Fatalf("unexpected layout %+v", fig.Layout)
	}
	if fig.Layout.XAxis.Title.Text != "Day of the week" || fig.Layout.YAxis.Title.Text != "Counts" {
		t.Fatal("unexpected axis titles")
	}
}

func TestHoursByWeekdayDomain(t *testing.T) {
	s := newTestService(t, DefaultConfig())

	for _, w := range trip.Weekdays {
		fig, err := s.HoursByWeekday(context.Background(), w)
		if err != nil {
			t.Fatal(err)
		}
		tr := fig.Data[0]
		if len(tr.X) != 24 || len(tr.Y) != 24 {
			t.Fatalf("%s: want 24 bins, got %d", w, len(tr.X))
		}
		for h, x := range tr.X {
			if x != h {
				t.Fatalf("%s: bin %d labelled %v", w, h, x)
			}
		}
	}

	fig, _ := s.HoursByWeekday(context.Background(), trip.Monday)
	if fig.Data[0].Y[0] != 3 || fig.Data[0].Y[8] != 1 {
		t.Fatalf("unexpected monday bins %v", fig.Data[0].Y)
	}
	if fig.Layout.ShowLegend == nil || *fig.Layout.ShowLegend {
		t.Fatal("histogram should hide the legend")
	}
}

func TestRushByWeekdayByMonth(t *testing.T) {
	s := newTestService(t, DefaultConfig())
	fig, err := s.RushByWeekdayByMonth(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(fig.Data) != 7 {
		t.Fatalf("want one line per weekday, got %d", len(fig.Data))
	}
	for i, tr := range fig.Data {
		if tr.Name != string(trip.Weekdays[i]) || tr.Mode != "lines+markers" {
			t.Fatalf("trace %d: %s %s", i, tr.Name, tr.Mode)
		}
		if tr.Marker.Color != RushPalette[i] {
			t.Fatalf("trace %d color %s", i, tr.Marker.Color)
		}
	}
	if fig.Data[0].Y[0] != 2 || fig.Data[5].Y[22] != 1 {
		t.Fatal("unexpected rush counts")
	}
	if fig.Layout.Margin == nil || fig.Layout.Margin.T != 100 {
		t.Fatal("expected top margin of 100")
	}
}

func TestOccupancyMap(t *testing.T) {
	s := newTestService(t, DefaultConfig())

	fig, err := s.OccupancyMap(context.Background(), trip.Unter, 0, trip.Monday)
	if err != nil {
		t.Fatal(err)
	}
	tr := fig.Data[0]
	if tr.Type != "scattermapbox" || tr.Len() != 3 {
		t.Fatalf("unexpected map trace %+v", tr)
	}
	if tr.Marker.Opacity == nil || *tr.Marker.Opacity != 0.2 || fig.Layout.Mapbox.Zoom != 10 {
		t.Fatal("unexpected map styling")
	}
	if fig.Layout.Mapbox.Style != "carto-darkmatter" || fig.Layout.Mapbox.AccessToken != "" {
		t.Fatal("expected token-less style without a token")
	}
	wantLat := (40.70 + 40.72 + 40.73) / 3
	if d := fig.Layout.Mapbox.Center.Lat - wantLat; d > 1e-9 || d < -1e-9 {
		t.Fatalf("center lat %v want %v", fig.Layout.Mapbox.Center.Lat, wantLat)
	}
}

func TestOccupancyMapZeroOpacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MapOpacity = 0
	s := newTestService(t, cfg)

	fig, err := s.OccupancyMap(context.Background(), trip.Unter, 0, trip.Monday)
	if err != nil {
		t.Fatal(err)
	}

	body, err := json.Marshal(fig.Data[0].Marker)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(body); got != `{"color":"`+AccentColor+`","opacity":0}` {
		t.Fatalf("marker %s", got)
	}
}

func TestOccupancyMapAbsentTriple(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MapboxToken = "pk.test"
	s := newTestService(t, cfg)

	fig, err := s.OccupancyMap(context.Background(), trip.Schmecken, 5, trip.Sunday)
	if err != nil {
		t.Fatalf("absent triple should not fail: %v", err)
	}
	if fig.Data[0].Len() != 0 {
		t.Fatal("expected empty map trace")
	}
	if fig.Layout.Mapbox.Center != nycCenter {
		t.Fatal("empty map should center on NYC")
	}
	if fig.Layout.Mapbox.Style != "dark" || fig.Layout.Mapbox.AccessToken != "pk.test" {
		t.Fatal("expected mapbox style with token")
	}

	// the trace must still serialize with empty coordinate arrays omitted
	if _, err := json.Marshal(fig); err != nil {
		t.Fatal(err)
	}
}

func TestFigureDispatch(t *testing.T) {
	s := newTestService(t, DefaultConfig())
	filters := trip.DefaultFilters()

	figs, err := s.Figures(context.Background(), filters)
	if err != nil {
		t.Fatal(err)
	}
	if len(figs) != len(chart.IDs) {
		t.Fatalf("want %d figures, got %d", len(chart.IDs), len(figs))
	}

	figs, err = s.Figures(context.Background(), filters, chart.Map)
	if err != nil || len(figs) != 1 || figs[chart.Map] == nil {
		t.Fatalf("expected only the map, got %v, %v", figs, err)
	}

	_, err = s.Figure(context.Background(), chart.ID("pie"), filters)
	if !errors.Is(err, chart.ErrUnknownFigure) {
		t.Fatalf("want ErrUnknownFigure, got %v", err)
	}
}
