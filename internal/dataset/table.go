package dataset

import (
	"math"
	"strconv"
	"time"
)

// Source column names. They must match the uploaded header exactly.
const (
	ColDate      = "Fecha"
	ColUnit      = "Unidad"
	ColFleet     = "Flota"
	ColCargoType = "Tipo de Carga"
	ColCPK       = "CPK total"
	ColKm        = "kmstotales"
	// Derived from Fecha.
	ColMonth = "Mes"
	ColYear  = "Año"
)

// RequiredColumns lists the columns every input file must carry.
var RequiredColumns = []string{ColDate, ColUnit, ColFleet, ColCargoType, ColCPK, ColKm}

// Row is one (unit, date) reading. Nil pointers mark values that failed coercion.
type Row struct {
	Date      *time.Time
	Unit      string
	Fleet     string
	CargoType string
	CPK       *float64
	Km        *float64
	Month     int // 0 when Date is nil
	Year      int // 0 when Date is nil

	// raw source text, index-aligned with Table.Columns
	raw []string
}

// Table is the Observation Table. It is never mutated after Load; filters
// build new tables that share row values with their source.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row

	index     map[string]int
	withClock bool
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Where returns a new table holding the rows for which keep returns true,
// in source order.
func (t *Table) Where(keep func(Row) bool) *Table {
	out := t.derive(0)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

func (t *Table) derive(capacity int) *Table {
	return &Table{
		Name:      t.Name,
		Columns:   t.Columns,
		Rows:      make([]Row, 0, capacity),
		index:     t.index,
		withClock: t.withClock,
	}
}

// DateRange returns the earliest and latest Fecha. ok is false when no row has a date.
func (t *Table) DateRange() (lo, hi time.Time, ok bool) {
	for _, r := range t.Rows {
		if r.Date == nil {
			continue
		}
		if !ok || r.Date.Before(lo) {
			lo = *r.Date
		}
		if !ok || r.Date.After(hi) {
			hi = *r.Date
		}
		ok = true
	}
	return lo, hi, ok
}

// CPKRange returns the smallest and largest CPK. ok is false when no row has a CPK.
func (t *Table) CPKRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range t.Rows {
		if r.CPK == nil {
			continue
		}
		lo = math.Min(lo, *r.CPK)
		hi = math.Max(hi, *r.CPK)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Value renders the cell at column col of row r the way the export writes it.
func (t *Table) Value(r Row, col int) string {
	if col < 0 || col >= len(t.Columns) {
		return ""
	}
	switch t.Columns[col] {
	case ColDate:
		if r.Date == nil {
			return ""
		}
		if t.withClock {
			return r.Date.Format("2006-01-02 15:04:05")
		}
		return r.Date.Format("2006-01-02")
	case ColUnit:
		return r.Unit
	case ColFleet:
		return r.Fleet
	case ColCargoType:
		return r.CargoType
	case ColCPK:
		return formatFloat(r.CPK)
	case ColKm:
		return formatFloat(r.Km)
	case ColMonth:
		return formatInt(r.Month)
	case ColYear:
		return formatInt(r.Year)
	}
	if col < len(r.raw) {
		return r.raw[col]
	}
	return ""
}

// Record renders a full row in column order.
func (t *Table) Record(r Row) []string {
	rec := make([]string, len(t.Columns))
	for i := range t.Columns {
		rec[i] = t.Value(r, i)
	}
	return rec
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
