package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/cpkdash/internal/dataset"
)

// DefaultTopN is how many best and worst units the ranking mode keeps.
const DefaultTopN = 10

// ErrUnknownPeriod is returned for period names outside Periods.
var ErrUnknownPeriod = errors.New("unknown period")

// YearMonth pins a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Period is a named set of calendar months used by the ranking mode.
type Period struct {
	Name   string
	Months []YearMonth
}

// Contains reports whether a row's derived month and year fall in the period.
func (p Period) Contains(month, year int) bool {
	for _, ym := range p.Months {
		if int(ym.Month) == month && ym.Year == year {
			return true
		}
	}
	return false
}

// Periods lists the selectable periods in display order.
var Periods = []Period{
	{Name: "Octubre", Months: []YearMonth{{2024, time.October}}},
	{Name: "Noviembre", Months: []YearMonth{{2024, time.November}}},
	{Name: "Diciembre", Months: []YearMonth{{2024, time.December}}},
	{Name: "Enero", Months: []YearMonth{{2025, time.January}}},
	{Name: "Febrero", Months: []YearMonth{{2025, time.February}}},
	{Name: "Marzo", Months: []YearMonth{{2025, time.March}}},
	{Name: "Semestre Oct-Mar", Months: []YearMonth{
		{2024, time.October}, {2024, time.November}, {2024, time.December},
		{2025, time.January}, {2025, time.February}, {2025, time.March},
	}},
}

// PeriodNames returns the names of Periods in order.
func PeriodNames() []string {
	names := make([]string, len(Periods))
	for i, p := range Periods {
		names[i] = p.Name
	}
	return names
}

// PeriodByName looks a period up case-insensitively.
func PeriodByName(name string) (Period, error) {
	n := strings.TrimSpace(name)
	for _, p := range Periods {
		if strings.EqualFold(p.Name, n) {
			return p, nil
		}
	}
	return Period{}, fmt.Errorf("%w: %q (choose one of: %s)", ErrUnknownPeriod, name, strings.Join(PeriodNames(), ", "))
}

// UnitMean is a unit's mean CPK over the rows that had one.
type UnitMean struct {
	Unit    string  `json:"unit"`
	MeanCPK float64 `json:"mean_cpk"`
	Count   int     `json:"count"`
}

// Ranking holds the best (lowest mean CPK) and worst (highest) units of a period.
type Ranking struct {
	Period string     `json:"period"`
	Best   []UnitMean `json:"best"`
	Worst  []UnitMean `json:"worst"`
}

// Units returns the union of best and worst units, sorted.
func (r *Ranking) Units() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range [][]UnitMean{r.Best, r.Worst} {
		for _, u := range list {
			if _, ok := seen[u.Unit]; ok {
				continue
			}
			seen[u.Unit] = struct{}{}
			out = append(out, u.Unit)
		}
	}
	sort.Strings(out)
	return out
}

// TopBottom keeps the period's rows for its N best and N worst units.
type TopBottom struct {
	Period Period
	// N defaults to DefaultTopN when <= 0.
	N int
}

// Apply implements Filter.
func (tb TopBottom) Apply(t *dataset.Table) (*Selection, error) {
	if len(tb.Period.Months) == 0 {
		return nil, fmt.Errorf("%w: empty period", ErrUnknownPeriod)
	}
	n := tb.N
	if n <= 0 {
		n = DefaultTopN
	}
	inPeriod := t.Where(func(r dataset.Row) bool {
		return r.Date != nil && tb.Period.Contains(r.Month, r.Year)
	})

	means := unitMeans(inPeriod)
	asc := make([]UnitMean, len(means))
	copy(asc, means)
	sort.SliceStable(asc, func(i, j int) bool {
		if asc[i].MeanCPK == asc[j].MeanCPK {
			return asc[i].Unit < asc[j].Unit
		}
		return asc[i].MeanCPK < asc[j].MeanCPK
	})
	desc := make([]UnitMean, len(means))
	copy(desc, means)
	sort.SliceStable(desc, func(i, j int) bool {
		if desc[i].MeanCPK == desc[j].MeanCPK {
			return desc[i].Unit < desc[j].Unit
		}
		return desc[i].MeanCPK > desc[j].MeanCPK
	})
	rk := &Ranking{Period: tb.Period.Name, Best: head(asc, n), Worst: head(desc, n)}

	keep := toSet(rk.Units())
	out := inPeriod.Where(func(r dataset.Row) bool {
		_, ok := keep[r.Unit]
		return ok
	})
	return &Selection{Table: out, Ranking: rk}, nil
}

// unitMeans averages CPK per unit, skipping missing values. Units with no
// CPK at all are left out.
func unitMeans(t *dataset.Table) []UnitMean {
	acc := map[string]*meanAcc{}
	var order []string
	for _, r := range t.Rows {
		if r.CPK == nil {
			continue
		}
		a := acc[r.Unit]
		if a == nil {
			a = &meanAcc{}
			acc[r.Unit] = a
			order = append(order, r.Unit)
		}
		a.add(*r.CPK)
	}
	out := make([]UnitMean, 0, len(order))
	for _, u := range order {
		a := acc[u]
		out = append(out, UnitMean{Unit: u, MeanCPK: a.sum / float64(a.n), Count: a.n})
	}
	return out
}

func head(list []UnitMean, n int) []UnitMean {
	if len(list) > n {
		return list[:n]
	}
	return list
}
