// internal/domain/chart/model.go

package chart

import (
	"context"
	"errors"

	"tripdash/internal/domain/trip"
)

// ID identifies one of the dashboard figures
type ID string

// Dashboard figures
const (
	WeekdaysBar ID = "weekdays-bar-chart"
	HoursHist   ID = "hours-histogram"
	RushLine    ID = "rush-hour-line-chart"
	Map         ID = "map"
)

// IDs lists the dashboard figures in page order
var IDs = []ID{WeekdaysBar, HoursHist, RushLine, Map}

// Input names a dashboard control
type Input string

// Dashboard controls
const (
	InputMonth   Input = "month"
	InputWeekday Input = "weekday"
	InputBase    Input = "base"
	InputHour    Input = "hour"
)

// Dependencies maps each figure to the controls it is computed from
var Dependencies = map[ID][]Input{
	WeekdaysBar: {InputMonth},
	HoursHist:   {InputWeekday},
	RushLine:    {InputMonth},
	Map:         {InputBase, InputHour, InputWeekday},
}

// ErrUnknownFigure is returned for an ID outside IDs
var ErrUnknownFigure = errors.New("unknown figure")

// Known reports whether id names a dashboard figure
func (id ID) Known() bool {
	_, ok := Dependencies[id]
	return ok
}

// Figure is a chart description in the Plotly.js figure format
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one data series of a figure
type Trace struct {
	Type   string        `json:"type"`
	Name   string        `json:"name,omitempty"`
	Mode   string        `json:"mode,omitempty"`
	X      []interface{} `json:"x,omitempty"`
	Y      []float64     `json:"y,omitempty"`
	Lat    []float64     `json:"lat,omitempty"`
	Lon    []float64     `json:"lon,omitempty"`
	Marker *Marker       `json:"marker,omitempty"`
	Line   *Line         `json:"line,omitempty"`
}

// Len returns the number of points in the trace
func (t Trace) Len() int {
	if len(t.Lat) > 0 {
		return len(t.Lat)
	}
	return len(t.Y)
}

// Marker styles trace points or bars
type Marker struct {
	Color   string   `json:"color,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"` // nil when unset; 0 is fully transparent
}

// Line styles a line trace
type Line struct {
	Color string `json:"color,omitempty"`
}

// Font is a text style
type Font struct {
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
}

// Title is a chart or axis title
type Title struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

// Axis configures an x or y axis
type Axis struct {
	Title     *Title        `json:"title,omitempty"`
	TickMode  string        `json:"tickmode,omitempty"`
	DTick     float64       `json:"dtick,omitempty"`
	GridColor string        `json:"gridcolor,omitempty"`
	Category  []interface{} `json:"categoryarray,omitempty"`
	CatOrder  string        `json:"categoryorder,omitempty"`
}

// Margin is the plot margin in pixels
type Margin struct {
	T int `json:"t,omitempty"`
	B int `json:"b,omitempty"`
	L int `json:"l,omitempty"`
	R int `json:"r,omitempty"`
}

// Coordinates is a map position
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Mapbox configures the map subplot
type Mapbox struct {
	AccessToken string      `json:"accesstoken,omitempty"`
	Style       string      `json:"style"`
	Zoom        float64     `json:"zoom"`
	Center      Coordinates `json:"center"`
}

// Legend configures the figure legend
type Legend struct {
	Title *Title `json:"title,omitempty"`
}

// Layout is the figure layout
type Layout struct {
	Title        Title    `json:"title"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Font         *Font    `json:"font,omitempty"`
	PlotBgColor  string   `json:"plot_bgcolor,omitempty"`
	PaperBgColor string   `json:"paper_bgcolor,omitempty"`
	XAxis        *Axis    `json:"xaxis,omitempty"`
	YAxis        *Axis    `json:"yaxis,omitempty"`
	ShowLegend   *bool    `json:"showlegend,omitempty"`
	Legend       *Legend  `json:"legend,omitempty"`
	BarGap       *float64 `json:"bargap,omitempty"`
	Margin       *Margin  `json:"margin,omitempty"`
	Mapbox       *Mapbox  `json:"mapbox,omitempty"`
}

// Service defines the interface for building dashboard figures
type Service interface {
	// WeekdaysByMonth returns the bar chart of rides per weekday for a month
	WeekdaysByMonth(ctx context.Context, month trip.Month) (*Figure, error)

	// HoursByWeekday returns the histogram of rides per hour for a weekday
	HoursByWeekday(ctx context.Context, weekday trip.Weekday) (*Figure, error)

	// RushByWeekdayByMonth returns hourly ride lines per weekday for a month
	RushByWeekdayByMonth(ctx context.Context, month trip.Month) (*Figure, error)

	// OccupancyMap returns the pickup scatter map for a base, hour and weekday
	OccupancyMap(ctx context.Context, base trip.Base, hour int, weekday trip.Weekday) (*Figure, error)

	// Figure builds a single figure from the full set of filters
	Figure(ctx context.Context, id ID, filters trip.Filters) (*Figure, error)

	// Figures builds the requested figures, or all of them when ids is empty
	Figures(ctx context.Context, filters trip.Filters, ids ...ID) (map[ID]*Figure, error)
}

// Affected returns the figures whose inputs differ between prev and next, in
// page order. A nil prev affects every figure.
func Affected(prev *trip.Filters, next trip.Filters) []ID {
	if prev == nil {
		return append([]ID(nil), IDs...)
	}

	changed := map[Input]bool{
		InputMonth:   prev.Month != next.Month,
		InputWeekday: prev.Weekday != next.Weekday,
		InputBase:    prev.Base != next.Base,
		InputHour:    prev.Hour != next.Hour,
	}

	var ids []ID
	for _, id := range IDs {
		for _, in := range Dependencies[id] {
			if changed[in] {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}
