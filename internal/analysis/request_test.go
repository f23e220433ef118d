package analysis

import (
	"errors"
	"testing"
)

func TestFilterRequestManual(t *testing.T) {
	f, err := FilterRequest{
		Fleets: []string{"Norte", " Sur ", " "},
		From:   "2024-10-02",
		To:     "2024-10-31",
		CPKMin: "8",
	}.Filter()
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	m, ok := f.(Manual)
	if !ok {
		t.Fatalf("filter type = %T", f)
	}
	if len(m.Fleets) != 2 || m.Fleets[1] != "Sur" || m.CPKMax != nil || *m.CPKMin != 8 {
		t.Fatalf("manual = %+v", m)
	}
	sel, _ := f.Apply(fleetTable(t))
	if got := units(sel.Table); got != "101,102,201" {
		t.Fatalf("units = %s", got)
	}
}

func TestFilterRequestKeepsCommasInValues(t *testing.T) {
	tbl := buildTable(t,
		[]string{"2024-10-01", "1", "Norte, Sur", "Seca, Granel", "10", "100"},
		[]string{"2024-10-02", "2", "Norte", "Seca", "12", "100"},
		[]string{"2024-10-03", "3", "Sur", "Granel", "14", "100"},
	)
	cases := []struct {
		req  FilterRequest
		want string
	}{
		{FilterRequest{Fleets: []string{"Norte, Sur"}}, "1"},
		{FilterRequest{CargoTypes: []string{"Seca, Granel"}}, "1"},
		{FilterRequest{Fleets: []string{"Norte", "Sur"}}, "2,3"},
	}
	for _, c := range cases {
		f, err := c.req.Filter()
		if err != nil {
			t.Fatalf("Filter: %v", err)
		}
		sel, err := f.Apply(tbl)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if got := units(sel.Table); got != c.want {
			t.Errorf("%+v: units = %s, want %s", c.req, got, c.want)
		}
	}
}

func TestFilterRequestTop(t *testing.T) {
	f, err := FilterRequest{Mode: "TOP", TopN: 3}.Filter()
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	tb := f.(TopBottom)
	if tb.Period.Name != "Octubre" || tb.N != 3 {
		t.Fatalf("top = %+v", tb)
	}
	if _, err := (FilterRequest{Mode: "top", Period: "Julio"}).Filter(); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("expected ErrUnknownPeriod, got %v", err)
	}
}

func TestFilterRequestRejectsBadInput(t *testing.T) {
	for _, r := range []FilterRequest{
		{Mode: "auto"},
		{From: "01/10/2024"},
		{CPKMax: "barato"},
		{From: "2024-11-01", To: "2024-10-01"},
	} {
		if _, err := r.Filter(); !errors.Is(err, ErrBadFilter) {
			t.Errorf("%+v: expected ErrBadFilter, got %v", r, err)
		}
	}
}
