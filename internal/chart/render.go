// Package chart draws dual-axis line charts as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"HypeChart/internal/model"
)

// DefaultDPI is the resolution used when a spec does not set one.
const DefaultDPI = 300

// Line colors.
const (
	Blue   = "0000ff"
	Red    = "ff0000"
	Purple = "800080"
)

// baseDPI is the resolution go-chart's pixel defaults are tuned for.
const baseDPI = 92.0

// Spec describes one dual-axis chart. The left series is drawn against the
// primary Y axis and the right series against an independent secondary axis.
type Spec struct {
	Title      string
	Left       model.Series
	Right      model.Series
	LeftLabel  string
	RightLabel string
	LeftColor  string
	RightColor string
	LeftWidth  float64
	RightWidth float64
	WidthIn    float64
	HeightIn   float64
	DPI        float64
}

// Size returns the pixel dimensions of the rendered image.
func (s Spec) Size() (width, height int) {
	dpi := s.dpi()
	return int(math.Round(s.WidthIn * dpi)), int(math.Round(s.HeightIn * dpi))
}

func (s Spec) dpi() float64 {
	if s.DPI <= 0 {
		return DefaultDPI
	}
	return s.DPI
}

// Render writes the chart to w as PNG. Empty or all-NaN series produce a
// blank plot area rather than an error.
func Render(w io.Writer, spec Spec) error {
	if spec.WidthIn <= 0 || spec.HeightIn <= 0 {
		return fmt.Errorf("invalid figure size %.1fx%.1f in", spec.WidthIn, spec.HeightIn)
	}
	dpi := spec.dpi()
	scale := dpi / baseDPI
	width, height := spec.Size()

	left := spec.Left.Valid()
	right := spec.Right.Valid()
	xr := timeRange(left, right)

	leftColor := drawing.ColorFromHex(orDefault(spec.LeftColor, Blue))
	rightColor := drawing.ColorFromHex(orDefault(spec.RightColor, Purple))

	graph := gochart.Chart{
		Title:      spec.Title,
		TitleStyle: gochart.Style{FontSize: 15},
		Width:      width,
		Height:     height,
		DPI:        dpi,
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    int(60 * scale),
				Left:   int(20 * scale),
				Right:  int(20 * scale),
				Bottom: int(20 * scale),
			},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01-02"),
			Range:          xr,
			GridMajorStyle: gochart.Style{
				StrokeColor:     drawing.ColorFromHex("cccccc"),
				StrokeWidth:     scale,
				StrokeDashArray: []float64{4 * scale, 4 * scale},
			},
		},
		YAxis: gochart.YAxis{
			Name:      spec.LeftLabel,
			NameStyle: gochart.Style{FontColor: leftColor},
			Style:     gochart.Style{FontColor: leftColor},
			Range:     valueRange(left),
		},
		YAxisSecondary: gochart.YAxis{
			Name:      spec.RightLabel,
			NameStyle: gochart.Style{FontColor: rightColor},
			Style:     gochart.Style{FontColor: rightColor},
			Range:     valueRange(right),
		},
		Series: []gochart.Series{
			lineSeries(left, leftColor, orWidth(spec.LeftWidth, 1.5)*dpi/72, gochart.YAxisPrimary, xr),
			lineSeries(right, rightColor, orWidth(spec.RightWidth, 2)*dpi/72, gochart.YAxisSecondary, xr),
		},
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render %q: %w", spec.Title, err)
	}
	return nil
}

// RenderBytes renders the chart into memory.
func RenderBytes(spec Spec) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, spec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderFile renders the chart to path, creating the parent directory.
func RenderFile(path string, spec Spec) error {
	png, err := RenderBytes(spec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// lineSeries converts s for plotting. An empty series becomes an invisible
// placeholder so the axis and legend entry are still drawn.
func lineSeries(s model.Series, color drawing.Color, width float64, axis gochart.YAxisType, xr *gochart.ContinuousRange) gochart.Series {
	ts := gochart.TimeSeries{
		Name:  s.Name,
		YAxis: axis,
		Style: gochart.Style{StrokeColor: color, StrokeWidth: width},
	}
	if s.Len() == 0 {
		ts.Style.StrokeColor = drawing.ColorTransparent
		ts.XValues = []time.Time{gochart.TimeFromFloat64(xr.Min), gochart.TimeFromFloat64(xr.Max)}
		ts.YValues = []float64{0, 0}
		return ts
	}
	ts.XValues = s.Dates()
	ts.YValues = s.Values()
	return ts
}

// timeRange spans every point of the given series. Without at least two
// distinct dates it falls back to a one-day window.
func timeRange(series ...model.Series) *gochart.ContinuousRange {
	var lo, hi time.Time
	for _, s := range series {
		start, end, ok := s.Span()
		if !ok {
			continue
		}
		if lo.IsZero() || start.Before(lo) {
			lo = start
		}
		if hi.IsZero() || end.After(hi) {
			hi = end
		}
	}
	if lo.IsZero() {
		lo = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		hi = lo
	}
	if !hi.After(lo) {
		lo = lo.Add(-12 * time.Hour)
		hi = hi.Add(12 * time.Hour)
	}
	return &gochart.ContinuousRange{Min: gochart.TimeToFloat64(lo), Max: gochart.TimeToFloat64(hi)}
}

// valueRange pads the data range by 5%. Flat or empty data gets a unit range.
func valueRange(s model.Series) *gochart.ContinuousRange {
	if s.Len() == 0 {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range s.Points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if hi == lo {
		return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orWidth(w, def float64) float64 {
	if w <= 0 {
		return def
	}
	return w
}
