package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Filter modes accepted by FilterRequest.
const (
	ModeManual = "manual"
	ModeTop    = "top"
)

// ErrBadFilter wraps malformed filter parameters.
var ErrBadFilter = errors.New("invalid filter")

// FilterRequest is the text form of a filter as it arrives from a query
// string or command-line flags.
type FilterRequest struct {
	Mode       string
	Fleets     []string
	Units      []string
	CargoTypes []string
	From, To   string // YYYY-MM-DD
	CPKMin     string
	CPKMax     string
	// Period defaults to the first entry of Periods in top mode.
	Period string
	TopN   int
}

// Filter parses the request into a Manual or TopBottom filter.
func (r FilterRequest) Filter() (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(r.Mode)) {
	case "", ModeManual:
		return r.manual()
	case ModeTop:
		name := r.Period
		if strings.TrimSpace(name) == "" {
			name = Periods[0].Name
		}
		p, err := PeriodByName(name)
		if err != nil {
			return nil, err
		}
		return TopBottom{Period: p, N: r.TopN}, nil
	}
	return nil, fmt.Errorf("%w: mode %q (want %s or %s)", ErrBadFilter, r.Mode, ModeManual, ModeTop)
}

func (r FilterRequest) manual() (Manual, error) {
	var m Manual
	var err error
	m.Fleets = clean(r.Fleets)
	m.Units = clean(r.Units)
	m.CargoTypes = clean(r.CargoTypes)
	if m.From, err = parseDay("from", r.From); err != nil {
		return m, err
	}
	if m.To, err = parseDay("to", r.To); err != nil {
		return m, err
	}
	if m.CPKMin, err = parseBound("cpk_min", r.CPKMin); err != nil {
		return m, err
	}
	if m.CPKMax, err = parseBound("cpk_max", r.CPKMax); err != nil {
		return m, err
	}
	if m.From != nil && m.To != nil && m.To.Before(*m.From) {
		return m, fmt.Errorf("%w: to %s is before from %s", ErrBadFilter, r.To, r.From)
	}
	return m, nil
}

func parseDay(name, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a YYYY-MM-DD date", ErrBadFilter, name, s)
	}
	return &d, nil
}

func parseBound(name, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", ErrBadFilter, name, s)
	}
	return &v, nil
}

// clean trims each value and drops blanks. Values are kept whole since
// fleet, unit and cargo names may contain commas.
func clean(vals []string) []string {
	var out []string
	for _, v := range vals {
		if p := strings.TrimSpace(v); p != "" {
			out = append(out, p)
		}
	}
	return out
}
