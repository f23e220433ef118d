// Package chart renders analysis projections as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
)

var (
	// ErrNoData is returned when a projection has nothing to plot.
	ErrNoData = errors.New("no data to plot")
	// ErrNoChart is returned for views that are tables only.
	ErrNoChart = errors.New("view has no chart")
)

// Options sizes the rendered image.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns a 16:9 canvas.
func DefaultOptions() Options {
	return Options{Width: 1024, Height: 576}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

// Render draws the projection built for view v.
func Render(v analysis.View, p analysis.Projection, opt Options) ([]byte, error) {
	opt = opt.normalized()
	switch proj := p.(type) {
	case *analysis.FleetSummary:
		return Fleet(proj, opt)
	case *analysis.BoxPlot:
		return Box(proj, opt)
	case *analysis.Trend:
		return Trend(proj, opt)
	case *analysis.Heatmap:
		return Heatmap(proj, opt)
	case *analysis.Scatter:
		return Scatter(proj, opt)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoChart, v)
}

func renderPNG(ch gochart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// pointStyle draws dots with no connecting line.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

// paddedRange widens a degenerate range so go-chart never sees a zero delta.
func paddedRange(lo, hi float64) *gochart.ContinuousRange {
	if hi <= lo {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	} else {
		pad := (hi - lo) * 0.05
		lo, hi = lo-pad, hi+pad
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

// categoryTicks places one labeled tick at the center of every slot plus two
// unlabeled ticks pinning the axis to [0, len(labels)].
func categoryTicks(labels []string) []gochart.Tick {
	ticks := make([]gochart.Tick, 0, len(labels)+2)
	ticks = append(ticks, gochart.Tick{Value: 0})
	for i, l := range labels {
		ticks = append(ticks, gochart.Tick{Value: float64(i) + 0.5, Label: l})
	}
	return append(ticks, gochart.Tick{Value: float64(len(labels))})
}

func background(bottom int) gochart.Style {
	return gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: bottom}}
}
