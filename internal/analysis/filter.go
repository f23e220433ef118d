package analysis

import (
	"time"

	"github.com/KaramelBytes/cpkdash/internal/dataset"
)

// Selection is the filtered table produced by either filter mode.
type Selection struct {
	Table *dataset.Table
	// Ranking is set only by TopBottom.
	Ranking *Ranking
}

// Filter restricts an Observation Table. Implementations never modify the input.
type Filter interface {
	Apply(t *dataset.Table) (*Selection, error)
}

// Manual keeps rows that satisfy every constraint. Empty sets mean no
// restriction; nil bounds take the table-wide minimum or maximum.
type Manual struct {
	Fleets     []string
	Units      []string
	CargoTypes []string
	// From and To are calendar dates, both inclusive.
	From, To *time.Time
	// CPKMin and CPKMax are inclusive.
	CPKMin, CPKMax *float64
}

// DefaultManual returns a Manual filter with every bound set to the table's
// full date and CPK range.
func DefaultManual(t *dataset.Table) Manual {
	var m Manual
	if lo, hi, ok := t.DateRange(); ok {
		from, to := day(lo), day(hi)
		m.From, m.To = &from, &to
	}
	if lo, hi, ok := t.CPKRange(); ok {
		m.CPKMin, m.CPKMax = &lo, &hi
	}
	return m
}

// Apply implements Filter. Rows without a date or CPK never pass, since the
// date and CPK ranges always apply.
func (m Manual) Apply(t *dataset.Table) (*Selection, error) {
	def := DefaultManual(t)
	from, to := orTime(m.From, def.From), orTime(m.To, def.To)
	lo, hi := orFloat(m.CPKMin, def.CPKMin), orFloat(m.CPKMax, def.CPKMax)
	fleets, units, cargos := toSet(m.Fleets), toSet(m.Units), toSet(m.CargoTypes)

	out := t.Where(func(r dataset.Row) bool {
		if r.Date == nil || r.CPK == nil {
			return false
		}
		d := day(*r.Date)
		if from != nil && d.Before(day(*from)) {
			return false
		}
		if to != nil && d.After(day(*to)) {
			return false
		}
		if !inSet(fleets, r.Fleet) || !inSet(units, r.Unit) || !inSet(cargos, r.CargoType) {
			return false
		}
		if lo != nil && *r.CPK < *lo {
			return false
		}
		if hi != nil && *r.CPK > *hi {
			return false
		}
		return true
	})
	return &Selection{Table: out}, nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func orTime(v, def *time.Time) *time.Time {
	if v != nil {
		return v
	}
	return def
}

func orFloat(v, def *float64) *float64 {
	if v != nil {
		return v
	}
	return def
}

func toSet(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func inSet(s map[string]struct{}, v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}
