package analysis

import (
	"math"
	"sort"
)

type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v float64) {
	a.sum += v
	a.n++
}

// mean returns nil when nothing was added.
func (a *meanAcc) mean() *float64 {
	if a == nil || a.n == 0 {
		return nil
	}
	m := a.sum / float64(a.n)
	return &m
}

// BoxStats summarizes a sample the way a Tukey boxplot draws it.
type BoxStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	// LowerWhisker and UpperWhisker are the most extreme non-outlier values.
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// boxStats computes quartiles with linear interpolation. Whiskers reach the
// most extreme points within 1.5·IQR of the box.
func boxStats(vals []float64) BoxStats {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	st := BoxStats{
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		Q1:       quantile(sorted, 0.25),
		Median:   quantile(sorted, 0.5),
		Q3:       quantile(sorted, 0.75),
		Outliers: []float64{},
	}
	iqr := st.Q3 - st.Q1
	lo, hi := st.Q1-1.5*iqr, st.Q3+1.5*iqr
	st.LowerWhisker, st.UpperWhisker = math.Inf(1), math.Inf(-1)
	for _, v := range sorted {
		if v < lo || v > hi {
			st.Outliers = append(st.Outliers, v)
			continue
		}
		st.LowerWhisker = math.Min(st.LowerWhisker, v)
		st.UpperWhisker = math.Max(st.UpperWhisker, v)
	}
	if math.IsInf(st.LowerWhisker, 1) {
		st.LowerWhisker, st.UpperWhisker = st.Q1, st.Q3
	}
	return st
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
