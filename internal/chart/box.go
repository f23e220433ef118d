package chart

import (
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
)

// boxSeries draws one Tukey box per group, centered on slot i+0.5.
type boxSeries struct {
	groups []analysis.BoxGroup
	style  gochart.Style
}

func (s boxSeries) GetName() string             { return "CPK" }
func (s boxSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s boxSeries) GetStyle() gochart.Style     { return s.style }
func (s boxSeries) Validate() error             { return nil }

func (s boxSeries) Render(r gochart.Renderer, canvas gochart.Box, xr, yr gochart.Range, defaults gochart.Style) {
	px := func(v float64) int { return canvas.Left + xr.Translate(v) }
	py := func(v float64) int { return canvas.Bottom - yr.Translate(v) }
	half := int(math.Max(2, float64(px(1)-px(0))*0.3))

	for i, g := range s.groups {
		st := g.Stats
		col := gochart.GetDefaultColor(i)
		cx := px(float64(i) + 0.5)
		line := gochart.Style{StrokeColor: col, StrokeWidth: 1.5}

		// whiskers
		line.WriteDrawingOptionsToRenderer(r)
		r.MoveTo(cx, py(st.LowerWhisker))
		r.LineTo(cx, py(st.Q1))
		r.MoveTo(cx, py(st.Q3))
		r.LineTo(cx, py(st.UpperWhisker))
		r.MoveTo(cx-half/2, py(st.LowerWhisker))
		r.LineTo(cx+half/2, py(st.LowerWhisker))
		r.MoveTo(cx-half/2, py(st.UpperWhisker))
		r.LineTo(cx+half/2, py(st.UpperWhisker))
		r.Stroke()
		r.ResetStyle()

		body := gochart.Box{Top: py(st.Q3), Bottom: py(st.Q1), Left: cx - half, Right: cx + half}
		gochart.Draw.Box(r, body, gochart.Style{FillColor: col.WithAlpha(96), StrokeColor: col, StrokeWidth: 1.5})

		line.WriteDrawingOptionsToRenderer(r)
		r.MoveTo(cx-half, py(st.Median))
		r.LineTo(cx+half, py(st.Median))
		r.Stroke()
		r.ResetStyle()

		for _, o := range st.Outliers {
			r.SetFillColor(col)
			r.SetStrokeColor(col)
			r.Circle(3, cx, py(o))
			r.FillStroke()
			r.ResetStyle()
		}
	}
}

// Box renders one box per (unit, fleet) group.
func Box(bp *analysis.BoxPlot, opt Options) ([]byte, error) {
	opt = opt.normalized()
	if len(bp.Groups) == 0 {
		return nil, ErrNoData
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	labels := make([]string, len(bp.Groups))
	for i, g := range bp.Groups {
		labels[i] = g.Label()
		lo = math.Min(lo, g.Stats.Min)
		hi = math.Max(hi, g.Stats.Max)
	}
	ch := gochart.Chart{
		Title:      "Distribución de CPK por Unidad",
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(80),
		XAxis: gochart.XAxis{
			Ticks:     categoryTicks(labels),
			TickStyle: gochart.Style{TextRotationDegrees: 45},
		},
		YAxis:  gochart.YAxis{Name: "CPK", Range: paddedRange(lo, hi)},
		Series: []gochart.Series{boxSeries{groups: bp.Groups}},
	}
	return renderPNG(ch)
}
