package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
	"github.com/KaramelBytes/cpkdash/internal/dataset"
	"github.com/KaramelBytes/cpkdash/internal/parser"
)

func sampleTable(t *testing.T, rows ...[]string) *dataset.Table {
	t.Helper()
	recs := &parser.Records{
		Name:   "sample.csv",
		Header: []string{"Fecha", "Unidad", "Flota", "Tipo de Carga", "CPK total", "kmstotales"},
		Rows:   rows,
	}
	tbl, err := dataset.FromRecords(recs, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return tbl
}

func fullTable(t *testing.T) *dataset.Table {
	return sampleTable(t,
		[]string{"2024-10-01", "101", "Norte", "Seca", "10", "100"},
		[]string{"2024-10-02", "101", "Norte", "Seca", "14", "120"},
		[]string{"2024-10-09", "102", "Norte", "Refrigerada", "8", "90"},
		[]string{"2024-10-15", "201", "Sur", "Seca", "20", "300"},
		[]string{"2024-10-22", "201", "Sur", "Seca", "60", "300"},
		[]string{"2024-11-04", "201", "Sur", "Refrigerada", "22", "310"},
		[]string{"2024-11-20", "301", "Centro", "Seca", "5", "80"},
	)
}

func TestRenderEveryChartView(t *testing.T) {
	tbl := fullTable(t)
	opt := Options{Width: 640, Height: 360}
	for _, v := range analysis.Views {
		if v == analysis.ViewTable {
			continue
		}
		proj, err := analysis.Build(v, tbl)
		if err != nil {
			t.Fatalf("Build(%s): %v", v, err)
		}
		out, err := Render(v, proj, opt)
		if err != nil {
			t.Fatalf("Render(%s): %v", v, err)
		}
		img, err := png.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("%s: not a png: %v", v, err)
		}
		if b := img.Bounds(); b.Dx() != opt.Width {
			t.Fatalf("%s: width = %d, want %d", v, b.Dx(), opt.Width)
		}
	}
}

func TestRenderEmptyProjectionIsNoData(t *testing.T) {
	empty := fullTable(t).Where(func(dataset.Row) bool { return false })
	for _, v := range analysis.Views {
		if v == analysis.ViewTable {
			continue
		}
		proj, _ := analysis.Build(v, empty)
		if _, err := Render(v, proj, DefaultOptions()); !errors.Is(err, ErrNoData) {
			t.Fatalf("%s: expected ErrNoData, got %v", v, err)
		}
	}
}

func TestRenderTableHasNoChart(t *testing.T) {
	proj, _ := analysis.Build(analysis.ViewTable, fullTable(t))
	if _, err := Render(analysis.ViewTable, proj, DefaultOptions()); !errors.Is(err, ErrNoChart) {
		t.Fatalf("expected ErrNoChart, got %v", err)
	}
}

func TestRenderSinglePoint(t *testing.T) {
	tbl := sampleTable(t, []string{"2024-10-01", "7", "Norte", "Seca", "4", "40"})
	for _, v := range []analysis.View{analysis.ViewTrend, analysis.ViewScatter, analysis.ViewBox, analysis.ViewHeatmap, analysis.ViewFleet} {
		proj, _ := analysis.Build(v, tbl)
		if _, err := Render(v, proj, Options{}); err != nil {
			t.Fatalf("%s with one row: %v", v, err)
		}
	}
}

func TestHeatColorEnds(t *testing.T) {
	if heatColor(0) != lowColor || heatColor(1) != highColor || heatColor(0.5) != midColor {
		t.Fatalf("color scale endpoints drifted")
	}
	if heatColor(-3) != lowColor || heatColor(7) != highColor {
		t.Fatalf("out of range values must clamp")
	}
}

func TestKmSizeGrowsWithKm(t *testing.T) {
	size := kmSize(100, 300)
	var r gochart.ContinuousRange
	if lo, hi := size(&r, &r, 0, 10, 100), size(&r, &r, 0, 10, 300); lo != 3 || hi != 12 {
		t.Fatalf("sizes = %v, %v", lo, hi)
	}
	if got := kmSize(50, 50)(&r, &r, 0, 10, 50); got != 6 {
		t.Fatalf("flat range size = %v", got)
	}
}
