package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/cpkdash/internal/parser"
)

// Options controls loading and coercion.
type Options struct {
	Parser parser.Options
	// DayFirst reads ambiguous slash dates as DD/MM/YYYY.
	DayFirst bool
	// DecimalSeparator for numbers. If 0, auto-detect per value.
	DecimalSeparator rune
	// ThousandsSeparator is optional; if 0, strips common separators other than the decimal one.
	ThousandsSeparator rune
}

// DefaultOptions reads numbers with a dot decimal separator.
func DefaultOptions() Options {
	return Options{DecimalSeparator: '.'}
}

// Load reads a CSV or XLSX stream and returns the normalized Observation Table.
func Load(name string, r io.Reader, opt Options) (*Table, error) {
	recs, err := parser.ReadRecords(name, r, opt.Parser)
	if err != nil {
		return nil, err
	}
	return FromRecords(recs, opt)
}

// LoadFile is Load for a path on disk.
func LoadFile(path string, opt Options) (*Table, error) {
	recs, err := parser.ReadFile(path, opt.Parser)
	if err != nil {
		return nil, err
	}
	return FromRecords(recs, opt)
}

// FromRecords coerces raw records. Every required column must be present;
// cell-level parse failures become nil values and never fail the load.
func FromRecords(recs *parser.Records, opt Options) (*Table, error) {
	if recs == nil {
		return nil, fmt.Errorf("no records")
	}
	columns := make([]string, len(recs.Header))
	copy(columns, recs.Header)
	index := make(map[string]int, len(columns)+2)
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Missing: missing, Available: columns}
	}
	for _, c := range []string{ColMonth, ColYear} {
		if _, ok := index[c]; !ok {
			index[c] = len(columns)
			columns = append(columns, c)
		}
	}

	t := &Table{Name: recs.Name, Columns: columns, Rows: make([]Row, 0, len(recs.Rows)), index: index}
	cell := func(rec []string, col string) string {
		i := index[col]
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	for _, rec := range recs.Rows {
		r := Row{
			Date:      parseDate(cell(rec, ColDate), opt, recs.SerialDates),
			Unit:      strings.TrimSpace(cell(rec, ColUnit)),
			Fleet:     strings.TrimSpace(cell(rec, ColFleet)),
			CargoType: strings.TrimSpace(cell(rec, ColCargoType)),
			CPK:       parseNumber(cell(rec, ColCPK), opt),
			Km:        parseNumber(cell(rec, ColKm), opt),
			raw:       rec,
		}
		if r.Date != nil {
			r.Month = int(r.Date.Month())
			r.Year = r.Date.Year()
			if r.Date.Hour() != 0 || r.Date.Minute() != 0 || r.Date.Second() != 0 {
				t.withClock = true
			}
		}
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}
