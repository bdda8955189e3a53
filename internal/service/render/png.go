// internal/service/render/png.go

package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tripdash/internal/domain/chart"
)

// ErrUnsupportedTrace is returned for figures whose trace type has no PNG form
var ErrUnsupportedTrace = errors.New("unsupported trace type")

// Renderer draws dashboard figures as PNG images
type Renderer struct {
	background drawing.Color
	foreground drawing.Color
}

// NewRenderer creates a renderer using the dashboard's dark palette
func NewRenderer(background, foreground string) *Renderer {
	return &Renderer{
		background: colorOf(background, drawing.ColorBlack),
		foreground: colorOf(foreground, drawing.ColorWhite),
	}
}

// PNG writes fig to w. The first trace decides the chart kind: bar traces
// become a bar chart, scatter traces a line chart and scattermapbox a
// longitude/latitude dot plot.
func (r *Renderer) PNG(fig *chart.Figure, w io.Writer) error {
	if fig == nil || len(fig.Data) == 0 {
		return errors.New("figure has no traces")
	}

	switch kind := fig.Data[0].Type; kind {
	case "bar":
		return r.bar(fig, w)
	case "scatter":
		return r.lines(fig, w)
	case "scattermapbox":
		return r.scatterMap(fig, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedTrace, kind)
	}
}

func (r *Renderer) bar(fig *chart.Figure, w io.Writer) error {
	tr := fig.Data[0]
	fill := drawing.ColorBlue
	if tr.Marker != nil {
		fill = colorOf(tr.Marker.Color, fill)
	}

	bars := make([]gochart.Value, len(tr.Y))
	maxY := 0.0
	for i, y := range tr.Y {
		label := ""
		if i < len(tr.X) {
			label = labelOf(tr.X[i])
		}
		bars[i] = gochart.Value{
			Label: label,
			Value: y,
			Style: gochart.Style{FillColor: fill, StrokeColor: fill},
		}
		maxY = math.Max(maxY, y)
	}

	bc := gochart.BarChart{
		Title:      fig.Layout.Title.Text,
		TitleStyle: gochart.Style{FontColor: r.foreground},
		Width:      fig.Layout.Width,
		Height:     fig.Layout.Height,
		Background: r.panel(),
		Canvas:     r.panel(),
		XAxis:      gochart.Style{FontColor: r.foreground, StrokeColor: r.foreground},
		YAxis: gochart.YAxis{
			Style: gochart.Style{FontColor: r.foreground, StrokeColor: r.foreground},
			Range: &gochart.ContinuousRange{Min: 0, Max: niceMax(maxY)},
		},
		Bars: bars,
	}
	if len(bars) > 12 {
		bc.BarSpacing = 4
	}

	return bc.Render(gochart.PNG, w)
}

func (r *Renderer) lines(fig *chart.Figure, w io.Writer) error {
	series := make([]gochart.Series, 0, len(fig.Data))
	minX, maxX, maxY := math.MaxFloat64, -math.MaxFloat64, 0.0

	for _, tr := range fig.Data {
		color := drawing.ColorBlue
		if tr.Marker != nil {
			color = colorOf(tr.Marker.Color, color)
		}

		xs := make([]float64, len(tr.Y))
		for i := range tr.Y {
			xs[i] = float64(i)
			if i < len(tr.X) {
				if v, ok := numberOf(tr.X[i]); ok {
					xs[i] = v
				}
			}
			minX = math.Min(minX, xs[i])
			maxX = math.Max(maxX, xs[i])
			maxY = math.Max(maxY, tr.Y[i])
		}

		series = append(series, gochart.ContinuousSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: tr.Y,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
	}

	if minX >= maxX {
		minX, maxX = 0, 1
	}

	c := gochart.Chart{
		Title:      fig.Layout.Title.Text,
		TitleStyle: gochart.Style{FontColor: r.foreground},
		Width:      fig.Layout.Width,
		Height:     fig.Layout.Height,
		Background: r.panel(),
		Canvas:     r.panel(),
		XAxis: gochart.XAxis{
			Name:  axisTitle(fig.Layout.XAxis),
			Style: gochart.Style{FontColor: r.foreground, StrokeColor: r.foreground},
			Range: &gochart.ContinuousRange{Min: minX, Max: maxX},
		},
		YAxis: gochart.YAxis{
			Name:  axisTitle(fig.Layout.YAxis),
			Style: gochart.Style{FontColor: r.foreground, StrokeColor: r.foreground},
			Range: &gochart.ContinuousRange{Min: 0, Max: niceMax(maxY)},
		},
		Series: series,
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}

	return c.Render(gochart.PNG, w)
}

// scatterMap plots pickups without map tiles, longitude on x and latitude on y
func (r *Renderer) scatterMap(fig *chart.Figure, w io.Writer) error {
	tr := fig.Data[0]

	color := drawing.ColorBlue
	opacity := 1.0
	if tr.Marker != nil {
		color = colorOf(tr.Marker.Color, color)
		if tr.Marker.Opacity != nil {
			opacity = math.Max(0, math.Min(1, *tr.Marker.Opacity))
		}
	}
	color = color.WithAlpha(uint8(math.Round(opacity * 255)))

	minLat, maxLat, minLon, maxLon := bounds(tr.Lat, tr.Lon)
	if len(tr.Lat) == 0 && fig.Layout.Mapbox != nil {
		c := fig.Layout.Mapbox.Center
		minLat, maxLat, minLon, maxLon = c.Lat, c.Lat, c.Lon, c.Lon
	}
	const pad = 0.01
	if maxLat-minLat < 2*pad {
		minLat, maxLat = minLat-pad, maxLat+pad
	}
	if maxLon-minLon < 2*pad {
		minLon, maxLon = minLon-pad, maxLon+pad
	}

	c := gochart.Chart{
		Title:      fig.Layout.Title.Text,
		TitleStyle: gochart.Style{FontColor: r.foreground},
		Width:      fig.Layout.Width,
		Height:     fig.Layout.Height,
		Background: r.panel(),
		Canvas:     r.panel(),
		XAxis: gochart.XAxis{
			Name:  "Lon",
			Style: gochart.Style{FontColor: r.foreground, StrokeColor: r.foreground},
			Range: &gochart.ContinuousRange{Min: minLon, Max: maxLon},
		},
		YAxis: gochart.YAxis{
			Name:  "Lat",
			Style: gochart.Style{FontColor: r.foreground, StrokeColor: r.foreground},
			Range: &gochart.ContinuousRange{Min: minLat, Max: maxLat},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "pickups",
				XValues: tr.Lon,
				YValues: tr.Lat,
				Style: gochart.Style{
					StrokeWidth: gochart.Disabled,
					DotWidth:    2,
					DotColor:    color,
				},
			},
		},
	}

	return c.Render(gochart.PNG, w)
}

func (r *Renderer) panel() gochart.Style {
	return gochart.Style{FillColor: r.background}
}

func bounds(lat, lon []float64) (minLat, maxLat, minLon, maxLon float64) {
	if len(lat) == 0 || len(lon) == 0 {
		return 0, 0, 0, 0
	}
	minLat, maxLat = lat[0], lat[0]
	minLon, maxLon = lon[0], lon[0]
	for i := range lat {
		minLat = math.Min(minLat, lat[i])
		maxLat = math.Max(maxLat, lat[i])
	}
	for i := range lon {
		minLon = math.Min(minLon, lon[i])
		maxLon = math.Max(maxLon, lon[i])
	}
	return
}

// niceMax keeps the value axis non-degenerate when every count is zero
func niceMax(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v * 1.05
}

func axisTitle(a *chart.Axis) string {
	if a == nil || a.Title == nil {
		return ""
	}
	return a.Title.Text
}

func colorOf(hex string, fallback drawing.Color) drawing.Color {
	if !strings.HasPrefix(hex, "#") || (len(hex) != 7 && len(hex) != 4) {
		return fallback
	}
	return drawing.ColorFromHex(hex)
}

func labelOf(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func numberOf(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
