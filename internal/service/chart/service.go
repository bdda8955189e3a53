// internal/service/chart/service.go

package chart

import (
	"context"
	"fmt"

	"tripdash/internal/domain/chart"
	"tripdash/internal/domain/trip"
)

// Theme colors shared by every figure
const (
	BackgroundColor = "#262926"
	AccentColor     = "#56DC65"
	FontColor       = "#f2f5fa"
	GridColor       = "#283442"
)

// RushPalette colors the weekday lines, Monday first
var RushPalette = []string{"#C1F4C6", "#95EA9E", "#25C636", "#11621A", "#188924", "#57779D", "#83AAD7"}

// nycCenter centers the map when there is nothing to plot
var nycCenter = chart.Coordinates{Lat: 40.7306, Lon: -73.9352}

// Config contains configuration for figure building
type Config struct {
	Width       int
	Height      int
	MapboxToken string
	MapZoom     float64
	MapOpacity  float64
}

// DefaultConfig returns the figure geometry used by the dashboard
func DefaultConfig() Config {
	return Config{
		Width:      600,
		Height:     400,
		MapZoom:    10,
		MapOpacity: 0.2,
	}
}

// Service implements the chart.Service interface
type Service struct {
	store  trip.Store
	config Config
}

// NewService creates a new chart service
func NewService(store trip.Store, config Config) *Service {
	return &Service{
		store:  store,
		config: config,
	}
}

// WeekdaysByMonth returns the bar chart of rides per weekday for a month
func (s *Service) WeekdaysByMonth(ctx context.Context, month trip.Month) (*chart.Figure, error) {
	counts, err := s.store.CountByWeekday(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("error counting rides by weekday: %w", err)
	}

	x := make([]interface{}, len(counts))
	y := make([]float64, len(counts))
	for i, c := range counts {
		x[i] = string(c.Weekday)
		y[i] = float64(c.Count)
	}

	fig := &chart.Figure{
		Data: []chart.Trace{{
			Type:   "bar",
			X:      x,
			Y:      y,
			Marker: &chart.Marker{Color: AccentColor},
		}},
		Layout: s.layout("Number of rides for days of the week"),
	}
	fig.Layout.XAxis = axis("Day of the week", 17)
	fig.Layout.XAxis.CatOrder = "array"
	fig.Layout.XAxis.Category = x
	fig.Layout.YAxis = axis("Counts", 17)

	return fig, nil
}

// HoursByWeekday returns the histogram of rides per hour for a weekday.
// Bins are pre-computed, one per hour of the day.
func (s *Service) HoursByWeekday(ctx context.Context, weekday trip.Weekday) (*chart.Figure, error) {
	hist, err := s.store.HourHistogram(ctx, weekday)
	if err != nil {
		return nil, fmt.Errorf("error computing hour histogram: %w", err)
	}

	x := make([]interface{}, trip.HoursPerDay)
	y := make([]float64, trip.HoursPerDay)
	for h := 0; h < trip.HoursPerDay; h++ {
		x[h] = h
		y[h] = float64(hist[h])
	}

	noGap := 0.0
	fig := &chart.Figure{
		Data: []chart.Trace{{
			Type:   "bar",
			X:      x,
			Y:      y,
			Marker: &chart.Marker{Color: AccentColor},
		}},
		Layout: s.layout("Distribution of rides by hour of the day"),
	}
	fig.Layout.ShowLegend = boolPtr(false)
	fig.Layout.BarGap = &noGap
	fig.Layout.XAxis = axis("Hour", 0)
	fig.Layout.XAxis.TickMode = "linear"
	fig.Layout.XAxis.DTick = 1
	fig.Layout.YAxis = axis("Counts", 0)

	return fig, nil
}

// RushByWeekdayByMonth returns hourly ride lines per weekday for a month
func (s *Service) RushByWeekdayByMonth(ctx context.Context, month trip.Month) (*chart.Figure, error) {
	rush, err := s.store.RushByWeekday(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("error computing rush hours: %w", err)
	}

	hours := make([]interface{}, trip.HoursPerDay)
	for h := range hours {
		hours[h] = h
	}

	traces := make([]chart.Trace, 0, len(rush))
	for i, series := range rush {
		y := make([]float64, trip.HoursPerDay)
		for h, c := range series.Hours {
			y[h] = float64(c)
		}
		color := RushPalette[i%len(RushPalette)]
		traces = append(traces, chart.Trace{
			Type:   "scatter",
			Mode:   "lines+markers",
			Name:   string(series.Weekday),
			X:      hours,
			Y:      y,
			Marker: &chart.Marker{Color: color},
			Line:   &chart.Line{Color: color},
		})
	}

	fig := &chart.Figure{
		Data:   traces,
		Layout: s.layout("Rush hours by weekday"),
	}
	fig.Layout.Margin = &chart.Margin{T: 100}
	fig.Layout.Legend = &chart.Legend{Title: &chart.Title{Text: "weekday"}}
	fig.Layout.XAxis = axis("Hour", 17)
	fig.Layout.YAxis = axis("Counts", 17)

	return fig, nil
}

// OccupancyMap returns the pickup scatter map for a base, hour and weekday
func (s *Service) OccupancyMap(ctx context.Context, base trip.Base, hour int, weekday trip.Weekday) (*chart.Figure, error) {
	locations, err := s.store.Locations(ctx, base, hour, weekday)
	if err != nil {
		return nil, fmt.Errorf("error selecting pickup locations: %w", err)
	}

	lat := make([]float64, len(locations))
	lon := make([]float64, len(locations))
	center := nycCenter
	if len(locations) > 0 {
		var sumLat, sumLon float64
		for i, l := range locations {
			lat[i], lon[i] = l.Lat, l.Lon
			sumLat += l.Lat
			sumLon += l.Lon
		}
		n := float64(len(locations))
		center = chart.Coordinates{Lat: sumLat / n, Lon: sumLon / n}
	}

	style := "carto-darkmatter"
	if s.config.MapboxToken != "" {
		style = "dark"
	}
	opacity := s.config.MapOpacity

	fig := &chart.Figure{
		Data: []chart.Trace{{
			Type: "scattermapbox",
			Mode: "markers",
			Lat:  lat,
			Lon:  lon,
			Marker: &chart.Marker{
				Color:   AccentColor,
				Opacity: &opacity,
			},
		}},
		Layout: s.layout("Occupancy of base by hour and weekday"),
	}
	fig.Layout.Mapbox = &chart.Mapbox{
		AccessToken: s.config.MapboxToken,
		Style:       style,
		Zoom:        s.config.MapZoom,
		Center:      center,
	}

	return fig, nil
}

// Figure builds a single figure from the full set of filters
func (s *Service) Figure(ctx context.Context, id chart.ID, filters trip.Filters) (*chart.Figure, error) {
	switch id {
	case chart.WeekdaysBar:
		return s.WeekdaysByMonth(ctx, filters.Month)
	case chart.HoursHist:
		return s.HoursByWeekday(ctx, filters.Weekday)
	case chart.RushLine:
		return s.RushByWeekdayByMonth(ctx, filters.Month)
	case chart.Map:
		return s.OccupancyMap(ctx, filters.Base, filters.Hour, filters.Weekday)
	default:
		return nil, fmt.Errorf("%w: %q", chart.ErrUnknownFigure, id)
	}
}

// Figures builds the requested figures, or all of them when ids is empty
func (s *Service) Figures(ctx context.Context, filters trip.Filters, ids ...chart.ID) (map[chart.ID]*chart.Figure, error) {
	if len(ids) == 0 {
		ids = chart.IDs
	}

	figures := make(map[chart.ID]*chart.Figure, len(ids))
	for _, id := range ids {
		fig, err := s.Figure(ctx, id, filters)
		if err != nil {
			return nil, err
		}
		figures[id] = fig
	}

	return figures, nil
}

func (s *Service) layout(title string) chart.Layout {
	return chart.Layout{
		Title:        chart.Title{Text: title, Font: &chart.Font{Size: 20}},
		Width:        s.config.Width,
		Height:       s.config.Height,
		Font:         &chart.Font{Color: FontColor},
		PlotBgColor:  BackgroundColor,
		PaperBgColor: BackgroundColor,
	}
}

func axis(title string, fontSize float64) *chart.Axis {
	t := &chart.Title{Text: title}
	if fontSize > 0 {
		t.Font = &chart.Font{Size: fontSize}
	}
	return &chart.Axis{Title: t, GridColor: GridColor}
}

func boolPtr(b bool) *bool {
	return &b
}
