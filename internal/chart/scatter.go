package chart

import (
	"math"
	"sort"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
)

// Scatter plots mean CPK (x) against total km (y), one colored series per
// fleet, with markers sized by km. Groups without a mean CPK are not drawn.
func Scatter(sc *analysis.Scatter, opt Options) ([]byte, error) {
	opt = opt.normalized()
	byFleet := map[string]*gochart.ContinuousSeries{}
	var fleets []string
	xlo, xhi := math.Inf(1), math.Inf(-1)
	ylo, yhi := math.Inf(1), math.Inf(-1)
	for _, p := range sc.Points {
		if p.MeanCPK == nil {
			continue
		}
		s := byFleet[p.Fleet]
		if s == nil {
			s = &gochart.ContinuousSeries{Name: p.Fleet}
			byFleet[p.Fleet] = s
			fleets = append(fleets, p.Fleet)
		}
		s.XValues = append(s.XValues, *p.MeanCPK)
		s.YValues = append(s.YValues, p.TotalKm)
		xlo, xhi = math.Min(xlo, *p.MeanCPK), math.Max(xhi, *p.MeanCPK)
		ylo, yhi = math.Min(ylo, p.TotalKm), math.Max(yhi, p.TotalKm)
	}
	if len(fleets) == 0 {
		return nil, ErrNoData
	}
	sort.Strings(fleets)
	series := make([]gochart.Series, 0, len(fleets))
	for i, f := range fleets {
		s := byFleet[f]
		s.Style = pointStyle(gochart.GetDefaultColor(i))
		s.Style.DotWidthProvider = kmSize(ylo, yhi)
		series = append(series, *s)
	}
	ch := gochart.Chart{
		Title:      "CPK vs Kilómetros Totales",
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(32),
		XAxis:      gochart.XAxis{Name: "CPK promedio", Range: paddedRange(xlo, xhi)},
		YAxis:      gochart.YAxis{Name: "Km totales", Range: paddedRange(ylo, yhi)},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return renderPNG(ch)
}

// kmSize scales marker radius between 3 and 12 px over [lo, hi] km.
func kmSize(lo, hi float64) gochart.SizeProvider {
	return func(_, _ gochart.Range, _ int, _, y float64) float64 {
		if hi <= lo {
			return 6
		}
		return 3 + 9*(y-lo)/(hi-lo)
	}
}
