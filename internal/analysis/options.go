package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/cpkdash/internal/dataset"
)

// FilterOptions lists the values a client can pick filters from.
type FilterOptions struct {
	Fleets     []string   `json:"fleets"`
	Units      []string   `json:"units"`
	CargoTypes []string   `json:"cargo_types"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	CPKMin     *float64   `json:"cpk_min,omitempty"`
	CPKMax     *float64   `json:"cpk_max,omitempty"`
	Periods    []string   `json:"periods"`
}

// OptionsFor collects distinct non-empty categories and the default Mode A
// bounds of t.
func OptionsFor(t *dataset.Table) FilterOptions {
	fleets, units, cargos := map[string]struct{}{}, map[string]struct{}{}, map[string]struct{}{}
	for _, r := range t.Rows {
		if r.Fleet != "" {
			fleets[r.Fleet] = struct{}{}
		}
		if r.Unit != "" {
			units[r.Unit] = struct{}{}
		}
		if r.CargoType != "" {
			cargos[r.CargoType] = struct{}{}
		}
	}
	def := DefaultManual(t)
	return FilterOptions{
		Fleets:     sortedKeys(fleets),
		Units:      sortedKeys(units),
		CargoTypes: sortedKeys(cargos),
		DateFrom:   def.From,
		DateTo:     def.To,
		CPKMin:     def.CPKMin,
		CPKMax:     def.CPKMax,
		Periods:    PeriodNames(),
	}
}

// Markdown renders the options like a dataset summary.
func (o FilterOptions) Markdown() string {
	var b strings.Builder
	b.WriteString("[FILTER OPTIONS]\n")
	b.WriteString("Fleets: " + joinOrNone(o.Fleets) + "\n")
	b.WriteString("Units: " + joinOrNone(o.Units) + "\n")
	b.WriteString("Cargo types: " + joinOrNone(o.CargoTypes) + "\n")
	if o.DateFrom != nil && o.DateTo != nil {
		b.WriteString(fmt.Sprintf("Dates: %s .. %s\n", o.DateFrom.Format("2006-01-02"), o.DateTo.Format("2006-01-02")))
	}
	if o.CPKMin != nil && o.CPKMax != nil {
		b.WriteString(fmt.Sprintf("CPK: %s .. %s\n", fmtMean(o.CPKMin), fmtMean(o.CPKMax)))
	}
	b.WriteString("Periods: " + joinOrNone(o.Periods) + "\n")
	return b.String()
}

func joinOrNone(vals []string) string {
	if len(vals) == 0 {
		return "(none)"
	}
	return strings.Join(vals, ", ")
}
