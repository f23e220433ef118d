package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/cpkdash/internal/dataset"
)

// ErrUnknownView is returned by ParseView for unrecognized selectors.
var ErrUnknownView = errors.New("unknown view")

// View selects one of the dashboard perspectives.
type View string

const (
	ViewFleet   View = "fleet"
	ViewBox     View = "box"
	ViewTrend   View = "trend"
	ViewHeatmap View = "heatmap"
	ViewScatter View = "scatter"
	ViewTable   View = "table"
)

// Views lists every view in display order.
var Views = []View{ViewFleet, ViewBox, ViewTrend, ViewHeatmap, ViewScatter, ViewTable}

var viewTitles = map[View]string{
	ViewFleet:   "Resumen de Flota",
	ViewBox:     "Boxplot CPK por Unidad",
	ViewTrend:   "Tendencia de CPK",
	ViewHeatmap: "Heatmap Semanal",
	ViewScatter: "CPK vs Kilómetros",
	ViewTable:   "Datos Filtrados",
}

// Title is the heading shown above the view.
func (v View) Title() string { return viewTitles[v] }

// ParseView accepts a view key or its title, case-insensitively.
func ParseView(s string) (View, error) {
	n := strings.TrimSpace(s)
	for _, v := range Views {
		if strings.EqualFold(n, string(v)) || strings.EqualFold(n, v.Title()) {
			return v, nil
		}
	}
	keys := make([]string, len(Views))
	for i, v := range Views {
		keys[i] = string(v)
	}
	return "", fmt.Errorf("%w: %q (choose one of: %s)", ErrUnknownView, s, strings.Join(keys, ", "))
}

// Projection is the aggregated data behind one view.
type Projection interface {
	Markdown() string
}

// Build computes the projection for view v over an already filtered table.
func Build(v View, t *dataset.Table) (Projection, error) {
	switch v {
	case ViewFleet:
		return BuildFleetSummary(t), nil
	case ViewBox:
		return BuildBoxPlot(t), nil
	case ViewTrend:
		return BuildTrend(t), nil
	case ViewHeatmap:
		return BuildHeatmap(t), nil
	case ViewScatter:
		return BuildScatter(t), nil
	case ViewTable:
		return &Raw{Table: t}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownView, string(v))
}

// GroupMean is the mean CPK of one group. MeanCPK is nil when no row in the
// group had a CPK.
type GroupMean struct {
	Key     string   `json:"key"`
	MeanCPK *float64 `json:"mean_cpk"`
	Count   int      `json:"count"`
}

// FleetSummary backs the fleet view.
type FleetSummary struct {
	// Fleets is sorted by mean CPK descending, missing means last.
	Fleets []GroupMean `json:"fleets"`
	// TopUnits holds the lowest mean CPK units, ascending.
	TopUnits []GroupMean `json:"top_units"`
}

// TopUnitsLimit caps FleetSummary.TopUnits.
const TopUnitsLimit = 10

func BuildFleetSummary(t *dataset.Table) *FleetSummary {
	fleets := groupMeans(t, func(r dataset.Row) string { return r.Fleet })
	sort.SliceStable(fleets, func(i, j int) bool {
		return lessMean(fleets[j].MeanCPK, fleets[i].MeanCPK, true)
	})
	units := groupMeans(t, func(r dataset.Row) string { return r.Unit })
	sort.SliceStable(units, func(i, j int) bool {
		return lessMean(units[i].MeanCPK, units[j].MeanCPK, false)
	})
	if len(units) > TopUnitsLimit {
		units = units[:TopUnitsLimit]
	}
	return &FleetSummary{Fleets: fleets, TopUnits: units}
}

// groupMeans returns one entry per key, sorted by key.
func groupMeans(t *dataset.Table, key func(dataset.Row) string) []GroupMean {
	acc := map[string]*meanAcc{}
	counts := map[string]int{}
	for _, r := range t.Rows {
		k := key(r)
		counts[k]++
		if r.CPK == nil {
			continue
		}
		a := acc[k]
		if a == nil {
			a = &meanAcc{}
			acc[k] = a
		}
		a.add(*r.CPK)
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]GroupMean, 0, len(keys))
	for _, k := range keys {
		out = append(out, GroupMean{Key: k, MeanCPK: acc[k].mean(), Count: counts[k]})
	}
	return out
}

// lessMean orders present means before missing ones. With inverted set the
// missing check is flipped so that missing values still sort last when the
// caller swaps its arguments for a descending order.
func lessMean(a, b *float64, inverted bool) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return inverted
	case b == nil:
		return !inverted
	}
	return *a < *b
}

// BoxGroup is one box of the boxplot.
type BoxGroup struct {
	Unit   string    `json:"unit"`
	Fleet  string    `json:"fleet"`
	Values []float64 `json:"values"`
	Stats  BoxStats  `json:"stats"`
}

// Label names the box on the chart axis.
func (g BoxGroup) Label() string { return g.Unit + " (" + g.Fleet + ")" }

type BoxPlot struct {
	Groups []BoxGroup `json:"groups"`
}

// BuildBoxPlot groups CPK values by (unit, fleet) in order of first
// appearance. Groups without any CPK are left out.
func BuildBoxPlot(t *dataset.Table) *BoxPlot {
	type key struct{ unit, fleet string }
	idx := map[key]int{}
	var groups []BoxGroup
	for _, r := range t.Rows {
		if r.CPK == nil {
			continue
		}
		k := key{r.Unit, r.Fleet}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, BoxGroup{Unit: r.Unit, Fleet: r.Fleet})
		}
		groups[i].Values = append(groups[i].Values, *r.CPK)
	}
	for i := range groups {
		groups[i].Stats = boxStats(groups[i].Values)
	}
	return &BoxPlot{Groups: nonNil(groups)}
}

type TrendPoint struct {
	Date    time.Time `json:"date"`
	MeanCPK float64   `json:"mean_cpk"`
	Count   int       `json:"count"`
}

type Trend struct {
	Points []TrendPoint `json:"points"`
}

// BuildTrend averages CPK per distinct Fecha, ascending by date.
func BuildTrend(t *dataset.Table) *Trend {
	acc := map[time.Time]*meanAcc{}
	for _, r := range t.Rows {
		if r.Date == nil || r.CPK == nil {
			continue
		}
		a := acc[*r.Date]
		if a == nil {
			a = &meanAcc{}
			acc[*r.Date] = a
		}
		a.add(*r.CPK)
	}
	pts := make([]TrendPoint, 0, len(acc))
	for d, a := range acc {
		pts = append(pts, TrendPoint{Date: d, MeanCPK: *a.mean(), Count: a.n})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
	return &Trend{Points: pts}
}

// WeekLabel formats t as year and Sunday-based week of year. Days before the
// first Sunday of the year fall in week 00.
func WeekLabel(t time.Time) string {
	yday := t.YearDay() - 1
	week := (yday + 7 - int(t.Weekday())) / 7
	return fmt.Sprintf("%04d-%02d", t.Year(), week)
}

// Heatmap is the unit by week pivot of mean CPK. Cells[i][j] belongs to
// Units[i] and Weeks[j]; nil marks a combination with no data.
type Heatmap struct {
	Units []string     `json:"units"`
	Weeks []string     `json:"weeks"`
	Cells [][]*float64 `json:"cells"`
}

func BuildHeatmap(t *dataset.Table) *Heatmap {
	type key struct{ unit, week string }
	acc := map[key]*meanAcc{}
	units, weeks := map[string]struct{}{}, map[string]struct{}{}
	for _, r := range t.Rows {
		if r.Date == nil || r.CPK == nil {
			continue
		}
		k := key{r.Unit, WeekLabel(*r.Date)}
		a := acc[k]
		if a == nil {
			a = &meanAcc{}
			acc[k] = a
		}
		a.add(*r.CPK)
		units[k.unit] = struct{}{}
		weeks[k.week] = struct{}{}
	}
	h := &Heatmap{Units: sortedKeys(units), Weeks: sortedKeys(weeks)}
	h.Cells = make([][]*float64, len(h.Units))
	for i, u := range h.Units {
		h.Cells[i] = make([]*float64, len(h.Weeks))
		for j, w := range h.Weeks {
			h.Cells[i][j] = acc[key{u, w}].mean()
		}
	}
	return h
}

// Cell returns the mean for a unit and week label.
func (h *Heatmap) Cell(unit, week string) (float64, bool) {
	for i, u := range h.Units {
		if u != unit {
			continue
		}
		for j, w := range h.Weeks {
			if w == week && h.Cells[i][j] != nil {
				return *h.Cells[i][j], true
			}
		}
	}
	return 0, false
}

type ScatterPoint struct {
	Unit    string   `json:"unit"`
	Fleet   string   `json:"fleet"`
	MeanCPK *float64 `json:"mean_cpk"`
	// TotalKm is 0 when no row in the group had kilometers.
	TotalKm float64 `json:"total_km"`
}

type Scatter struct {
	Points []ScatterPoint `json:"points"`
}

// BuildScatter groups rows by (unit, fleet) sorted by unit then fleet.
func BuildScatter(t *dataset.Table) *Scatter {
	type key struct{ unit, fleet string }
	type agg struct {
		cpk meanAcc
		km  float64
	}
	acc := map[key]*agg{}
	var keys []key
	for _, r := range t.Rows {
		k := key{r.Unit, r.Fleet}
		a := acc[k]
		if a == nil {
			a = &agg{}
			acc[k] = a
			keys = append(keys, k)
		}
		if r.CPK != nil {
			a.cpk.add(*r.CPK)
		}
		if r.Km != nil {
			a.km += *r.Km
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].unit != keys[j].unit {
			return keys[i].unit < keys[j].unit
		}
		return keys[i].fleet < keys[j].fleet
	})
	pts := make([]ScatterPoint, 0, len(keys))
	for _, k := range keys {
		a := acc[k]
		pts = append(pts, ScatterPoint{Unit: k.unit, Fleet: k.fleet, MeanCPK: a.cpk.mean(), TotalKm: a.km})
	}
	return &Scatter{Points: pts}
}

// Raw is the filtered table itself.
type Raw struct {
	Table *dataset.Table
}

// CSV serializes the table with the export schema.
func (r *Raw) CSV() ([]byte, error) { return r.Table.CSV() }

func (r *Raw) MarshalJSON() ([]byte, error) {
	rows := make([][]string, 0, r.Table.Len())
	for _, row := range r.Table.Rows {
		rows = append(rows, r.Table.Record(row))
	}
	return json.Marshal(struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}{r.Table.Columns, rows})
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
