package chart

import (
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
)

var (
	lowColor  = drawing.Color{R: 26, G: 152, B: 80, A: 255}
	midColor  = drawing.Color{R: 254, G: 224, B: 139, A: 255}
	highColor = drawing.Color{R: 215, G: 48, B: 39, A: 255}
)

// heatColor maps t in [0, 1] from green through yellow to red.
func heatColor(t float64) drawing.Color {
	t = math.Max(0, math.Min(1, t))
	if t < 0.5 {
		return lerp(lowColor, midColor, t*2)
	}
	return lerp(midColor, highColor, (t-0.5)*2)
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t)) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// heatSeries fills one cell per present (unit, week) mean. Rows grow
// downwards so the first unit is on top.
type heatSeries struct {
	h      *analysis.Heatmap
	lo, hi float64
}

func (s heatSeries) GetName() string             { return "CPK" }
func (s heatSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s heatSeries) GetStyle() gochart.Style     { return gochart.Style{} }
func (s heatSeries) Validate() error             { return nil }

func (s heatSeries) Render(r gochart.Renderer, canvas gochart.Box, xr, yr gochart.Range, defaults gochart.Style) {
	n := len(s.h.Units)
	span := s.hi - s.lo
	for i := range s.h.Units {
		row := float64(n - 1 - i)
		for j, c := range s.h.Cells[i] {
			if c == nil {
				continue
			}
			t := 0.5
			if span > 0 {
				t = (*c - s.lo) / span
			}
			col := heatColor(t)
			cell := gochart.Box{
				Left:   canvas.Left + xr.Translate(float64(j)),
				Right:  canvas.Left + xr.Translate(float64(j+1)),
				Top:    canvas.Bottom - yr.Translate(row+1),
				Bottom: canvas.Bottom - yr.Translate(row),
			}
			gochart.Draw.Box(r, cell, gochart.Style{FillColor: col, StrokeColor: drawing.ColorWhite, StrokeWidth: 1})
		}
	}
}

// Heatmap renders the unit by week pivot. Blank cells stay unpainted.
func Heatmap(h *analysis.Heatmap, opt Options) ([]byte, error) {
	opt = opt.normalized()
	if len(h.Units) == 0 || len(h.Weeks) == 0 {
		return nil, ErrNoData
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range h.Cells {
		for _, c := range row {
			if c != nil {
				lo = math.Min(lo, *c)
				hi = math.Max(hi, *c)
			}
		}
	}
	// y ticks run bottom-up, so list units in reverse
	rev := make([]string, len(h.Units))
	for i, u := range h.Units {
		rev[len(h.Units)-1-i] = u
	}
	ch := gochart.Chart{
		Title:      "Heatmap semanal de CPK por Unidad",
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(64),
		XAxis: gochart.XAxis{
			Name:      "Semana",
			Ticks:     categoryTicks(h.Weeks),
			TickStyle: gochart.Style{TextRotationDegrees: 45},
		},
		YAxis:  gochart.YAxis{Name: "Unidad", Ticks: categoryTicks(rev)},
		Series: []gochart.Series{heatSeries{h: h, lo: lo, hi: hi}},
	}
	return renderPNG(ch)
}
