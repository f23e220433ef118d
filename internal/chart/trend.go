package chart

import (
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
)

// Trend renders mean CPK over time as a line with markers.
func Trend(tr *analysis.Trend, opt Options) ([]byte, error) {
	opt = opt.normalized()
	if len(tr.Points) == 0 {
		return nil, ErrNoData
	}
	xs := make([]time.Time, 0, len(tr.Points))
	ys := make([]float64, 0, len(tr.Points))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range tr.Points {
		xs = append(xs, p.Date)
		ys = append(ys, p.MeanCPK)
		lo = math.Min(lo, p.MeanCPK)
		hi = math.Max(hi, p.MeanCPK)
	}
	// a single date would give a zero x-range
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}
	col := gochart.GetDefaultColor(0)
	ch := gochart.Chart{
		Title:      "Tendencia de CPK",
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(32),
		XAxis: gochart.XAxis{
			Name:           "Fecha",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: gochart.YAxis{Name: "CPK promedio", Range: paddedRange(lo, hi)},
		Series: []gochart.Series{gochart.TimeSeries{
			Name:    "CPK promedio",
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3},
		}},
	}
	return renderPNG(ch)
}
