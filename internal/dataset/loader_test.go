package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/cpkdash/internal/parser"
)

var fleetRows = []string{
	"Fecha,Unidad,Flota,Tipo de Carga,CPK total,kmstotales,Operador",
	"2024-10-01,101,Norte,Seca,12.5,1000,Ana",
	"2024-10-02,102,Sur,Refrigerada,9.75,850.5,Luis",
	"no-es-fecha,103,Norte,Seca,abc,,Eva",
	"2024-11-15,0101,Sur,Seca,\"1,200.5\",2000,Raul",
}

func writeFixture(t *testing.T, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadCoercesAndDerives(t *testing.T) {
	tbl, err := LoadFile(writeFixture(t, "tdr.csv", fleetRows), DefaultOptions())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tbl.Name != "tdr.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
	if tbl.Len() != 4 {
		t.Fatalf("rows = %d, want 4 (bad rows are retained)", tbl.Len())
	}
	wantCols := []string{"Fecha", "Unidad", "Flota", "Tipo de Carga", "CPK total", "kmstotales", "Operador", "Mes", "Año"}
	if strings.Join(tbl.Columns, "|") != strings.Join(wantCols, "|") {
		t.Fatalf("columns = %#v", tbl.Columns)
	}

	r0 := tbl.Rows[0]
	if r0.Date == nil || !r0.Date.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v", r0.Date)
	}
	if r0.Month != 10 || r0.Year != 2024 {
		t.Fatalf("derived month/year = %d/%d", r0.Month, r0.Year)
	}
	if r0.CPK == nil || *r0.CPK != 12.5 || r0.Km == nil || *r0.Km != 1000 {
		t.Fatalf("numbers = %v %v", r0.CPK, r0.Km)
	}

	bad := tbl.Rows[2]
	if bad.Date != nil || bad.CPK != nil || bad.Km != nil {
		t.Fatalf("expected missing values, got %#v", bad)
	}
	if bad.Month != 0 || bad.Year != 0 {
		t.Fatalf("derived fields should be empty for missing dates")
	}

	// unit ids stay text, leading zeros included
	if tbl.Rows[3].Unit != "0101" {
		t.Fatalf("unit = %q", tbl.Rows[3].Unit)
	}
	if got := tbl.Rows[3].CPK; got == nil || *got != 1200.5 {
		t.Fatalf("thousands separated cpk = %v", got)
	}
}

func TestLoadMissingColumns(t *testing.T) {
	lines := []string{"Fecha,Unidad,CPK total", "2024-10-01,101,3"}
	_, err := LoadFile(writeFixture(t, "partial.csv", lines), DefaultOptions())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected *MissingColumnError, got %T", err)
	}
	want := []string{"Flota", "Tipo de Carga", "kmstotales"}
	if strings.Join(mce.Missing, ",") != strings.Join(want, ",") {
		t.Fatalf("missing = %#v, want %#v", mce.Missing, want)
	}
	if !strings.Contains(err.Error(), `"Tipo de Carga"`) {
		t.Fatalf("error text = %q", err.Error())
	}
}

func TestLoadCommaDecimalWithDotSeparatorIsMissing(t *testing.T) {
	recs := &parser.Records{
		Name:   "flota.csv",
		Header: []string{"Fecha", "Unidad", "Flota", "Tipo de Carga", "CPK total", "kmstotales"},
		Rows:   [][]string{{"2024-10-01", "7", "Norte", "Seca", "0,75", "1,5"}},
	}
	tbl, err := FromRecords(recs, DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	r := tbl.Rows[0]
	if r.CPK != nil || r.Km != nil {
		t.Fatalf("CPK=%v km=%v, want both missing", r.CPK, r.Km)
	}
	if got := tbl.Record(r)[4]; got != "" {
		t.Fatalf("exported CPK = %q, want empty", got)
	}
}

func TestLoadTrimsCategoryText(t *testing.T) {
	recs := &parser.Records{
		Name:   "flota.csv",
		Header: []string{"Fecha", "Unidad", "Flota", "Tipo de Carga", "CPK total", "kmstotales"},
		Rows:   [][]string{{"2024-10-01", " 101 ", " Norte, Sur", "Seca ", "1", "1"}},
	}
	tbl, err := FromRecords(recs, DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	r := tbl.Rows[0]
	if r.Unit != "101" || r.Fleet != "Norte, Sur" || r.CargoType != "Seca" {
		t.Fatalf("row = %q %q %q", r.Unit, r.Fleet, r.CargoType)
	}
}

func TestParseDateOrders(t *testing.T) {
	cases := []struct {
		in       string
		dayFirst bool
		want     string
	}{
		{"2024-10-05", false, "2024-10-05"},
		{"2024-10-05 13:45:00", false, "2024-10-05"},
		{"2024-10-05T08:00:00-06:00", false, "2024-10-05"},
		{"10/05/2024", false, "2024-10-05"},
		{"10/05/2024", true, "2024-05-10"},
		{"25/10/2024", false, "2024-10-25"},
		{"", false, ""},
		{"mañana", false, ""},
	}
	for _, c := range cases {
		got := parseDate(c.in, Options{DayFirst: c.dayFirst}, false)
		if c.want == "" {
			if got != nil {
				t.Errorf("parseDate(%q) = %v, want nil", c.in, got)
			}
			continue
		}
		if got == nil || got.Format("2006-01-02") != c.want {
			t.Errorf("parseDate(%q, dayFirst=%v) = %v, want %s", c.in, c.dayFirst, got, c.want)
		}
	}
}

func TestParseDateSerial(t *testing.T) {
	got := parseDate("45566", Options{}, true)
	if got == nil || got.Format("2006-01-02") != "2024-10-01" {
		t.Fatalf("serial date = %v", got)
	}
	if parseDate("45566", Options{}, false) != nil {
		t.Fatalf("serial numbers in csv must not parse as dates")
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"12.5", DefaultOptions(), 12.5, true},
		{" $1,234.50 ", DefaultOptions(), 1234.5, true},
		{"1.234,5", Options{}, 1234.5, true},
		{"0,75", Options{DecimalSeparator: ','}, 0.75, true},
		{"0,75", DefaultOptions(), 0, false},
		{"1,5", DefaultOptions(), 0, false},
		{"12,34.5", DefaultOptions(), 0, false},
		{"-1,234,567.25", DefaultOptions(), -1234567.25, true},
		{"1.234", Options{DecimalSeparator: ','}, 1234, true},
		{"1.5", Options{DecimalSeparator: ','}, 0, false},
		{"1.234,5", Options{DecimalSeparator: ',', ThousandsSeparator: '.'}, 1234.5, true},
		{"NaN", DefaultOptions(), 0, false},
		{"inf", DefaultOptions(), 0, false},
		{"n/a", DefaultOptions(), 0, false},
		{"", DefaultOptions(), 0, false},
	}
	for _, c := range cases {
		got := parseNumber(c.in, c.opt)
		if !c.ok {
			if got != nil {
				t.Errorf("parseNumber(%q) = %v, want nil", c.in, *got)
			}
			continue
		}
		if got == nil || !almostEqual(*got, c.want, 1e-9) {
			t.Errorf("parseNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLoadXLSXSerialDates(t *testing.T) {
	recs := &parser.Records{
		Name:        "flota.xlsx",
		Header:      []string{"Fecha", "Unidad", "Flota", "Tipo de Carga", "CPK total", "kmstotales"},
		Rows:        [][]string{{"45597", "7", "Norte", "Seca", "3.5", "100"}},
		SerialDates: true,
	}
	tbl, err := FromRecords(recs, DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	r := tbl.Rows[0]
	if r.Date == nil || r.Month != 11 || r.Year != 2024 {
		t.Fatalf("serial date row = %#v", r)
	}
}

func TestTableRanges(t *testing.T) {
	tbl, err := LoadFile(writeFixture(t, "tdr.csv", fleetRows), DefaultOptions())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	lo, hi, ok := tbl.DateRange()
	if !ok || lo.Format("2006-01-02") != "2024-10-01" || hi.Format("2006-01-02") != "2024-11-15" {
		t.Fatalf("date range = %v %v %v", lo, hi, ok)
	}
	clo, chi, ok := tbl.CPKRange()
	if !ok || clo != 9.75 || chi != 1200.5 {
		t.Fatalf("cpk range = %v %v %v", clo, chi, ok)
	}

	empty := tbl.Where(func(Row) bool { return false })
	if _, _, ok := empty.DateRange(); ok {
		t.Fatalf("empty table should have no date range")
	}
	if _, _, ok := empty.CPKRange(); ok {
		t.Fatalf("empty table should have no cpk range")
	}
	if len(empty.Columns) != len(tbl.Columns) {
		t.Fatalf("derived table must keep the schema")
	}
}

func almostEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
