package analysis

import (
	"fmt"
	"strings"
)

func (f *FleetSummary) Markdown() string {
	var b strings.Builder
	b.WriteString("[CPK BY FLEET]\n")
	if len(f.Fleets) == 0 {
		b.WriteString("(no rows)\n")
	}
	for _, g := range f.Fleets {
		b.WriteString(fmt.Sprintf("- %s: %s (rows %d)\n", safeName(g.Key), fmtMean(g.MeanCPK), g.Count))
	}
	b.WriteString("\n[TOP UNITS BY CPK]\n")
	for i, g := range f.TopUnits {
		b.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, safeName(g.Key), fmtMean(g.MeanCPK)))
	}
	return b.String()
}

func (p *BoxPlot) Markdown() string {
	var b strings.Builder
	b.WriteString("[CPK DISTRIBUTION BY UNIT]\n")
	if len(p.Groups) == 0 {
		b.WriteString("(no rows)\n")
		return b.String()
	}
	b.WriteString("| Unidad | Flota | n | min | q1 | median | q3 | max | outliers |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, g := range p.Groups {
		s := g.Stats
		b.WriteString(fmt.Sprintf("| %s | %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %d |\n",
			safeVal(g.Unit), safeVal(g.Fleet), len(g.Values), s.Min, s.Q1, s.Median, s.Q3, s.Max, len(s.Outliers)))
	}
	return b.String()
}

func (t *Trend) Markdown() string {
	var b strings.Builder
	b.WriteString("[CPK TREND]\n")
	if len(t.Points) == 0 {
		b.WriteString("(no rows)\n")
	}
	for _, p := range t.Points {
		b.WriteString(fmt.Sprintf("- %s: %.4g (rows %d)\n", p.Date.Format("2006-01-02"), p.MeanCPK, p.Count))
	}
	return b.String()
}

func (h *Heatmap) Markdown() string {
	var b strings.Builder
	b.WriteString("[WEEKLY CPK HEATMAP]\n")
	if len(h.Units) == 0 {
		b.WriteString("(no rows)\n")
		return b.String()
	}
	b.WriteString("| Unidad |")
	for _, w := range h.Weeks {
		b.WriteString(" " + w + " |")
	}
	b.WriteString("\n|---|" + strings.Repeat("---|", len(h.Weeks)) + "\n")
	for i, u := range h.Units {
		b.WriteString("| " + safeVal(u) + " |")
		for _, c := range h.Cells[i] {
			if c == nil {
				b.WriteString("  |")
				continue
			}
			b.WriteString(fmt.Sprintf(" %.4g |", *c))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Scatter) Markdown() string {
	var b strings.Builder
	b.WriteString("[CPK VS KM]\n")
	if len(s.Points) == 0 {
		b.WriteString("(no rows)\n")
		return b.String()
	}
	b.WriteString("| Unidad | Flota | CPK medio | km totales |\n|---|---|---|---|\n")
	for _, p := range s.Points {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %.6g |\n", safeVal(p.Unit), safeVal(p.Fleet), fmtMean(p.MeanCPK), p.TotalKm))
	}
	return b.String()
}

func (r *Raw) Markdown() string {
	var b strings.Builder
	b.WriteString("[FILTERED ROWS]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\n\n", r.Table.Len()))
	if len(r.Table.Columns) == 0 {
		return b.String()
	}
	b.WriteString("|")
	for _, c := range r.Table.Columns {
		b.WriteString(" " + safeVal(c) + " |")
	}
	b.WriteString("\n|" + strings.Repeat("---|", len(r.Table.Columns)) + "\n")
	for _, row := range r.Table.Rows {
		b.WriteString("|")
		for _, v := range r.Table.Record(row) {
			b.WriteString(" " + safeVal(v) + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders the ranking as two numbered lists.
func (r *Ranking) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[RANKING %s]\n", strings.ToUpper(r.Period)))
	b.WriteString("Best (lowest CPK):\n")
	for i, u := range r.Best {
		b.WriteString(fmt.Sprintf("%d. %s: %.4g (rows %d)\n", i+1, safeVal(u.Unit), u.MeanCPK, u.Count))
	}
	b.WriteString("Worst (highest CPK):\n")
	for i, u := range r.Worst {
		b.WriteString(fmt.Sprintf("%d. %s: %.4g (rows %d)\n", i+1, safeVal(u.Unit), u.MeanCPK, u.Count))
	}
	return b.String()
}

func fmtMean(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", *v)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
