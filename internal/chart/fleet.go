package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
)

// Fleet stacks two bar charts: mean CPK per fleet above the lowest CPK units.
func Fleet(fs *analysis.FleetSummary, opt Options) ([]byte, error) {
	opt = opt.normalized()
	fleets := bars(fs.Fleets)
	if len(fleets) == 0 {
		return nil, ErrNoData
	}
	half := opt.Height / 2
	top, err := barPNG("CPK promedio por Flota", fleets, opt.Width, half)
	if err != nil {
		return nil, err
	}
	panels := [][]byte{top}
	if units := bars(fs.TopUnits); len(units) > 0 {
		bottom, err := barPNG(fmt.Sprintf("Top %d Unidades con menor CPK", len(units)), units, opt.Width, opt.Height-half)
		if err != nil {
			return nil, err
		}
		panels = append(panels, bottom)
	}
	return stack(panels, opt.Width)
}

func bars(groups []analysis.GroupMean) []gochart.Value {
	var out []gochart.Value
	for _, g := range groups {
		if g.MeanCPK == nil {
			continue
		}
		col := gochart.GetDefaultColor(len(out))
		out = append(out, gochart.Value{
			Label: g.Key,
			Value: *g.MeanCPK,
			Style: gochart.Style{FillColor: col, StrokeColor: col},
		})
	}
	return out
}

func barPNG(title string, vals []gochart.Value, width, height int) ([]byte, error) {
	lo, hi := 0.0, 0.0
	for _, v := range vals {
		lo = math.Min(lo, v.Value)
		hi = math.Max(hi, v.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	bc := gochart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: background(24),
		BarWidth:   barWidth(width, len(vals)),
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi * 1.1}},
		Bars:       vals,
	}
	var buf bytes.Buffer
	if err := bc.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

func barWidth(width, n int) int {
	w := (width - 120) / (n * 2)
	if w < 8 {
		return 8
	}
	if w > 80 {
		return 80
	}
	return w
}

// stack decodes the PNG panels and draws them top to bottom on one canvas.
func stack(panels [][]byte, width int) ([]byte, error) {
	imgs := make([]image.Image, 0, len(panels))
	height := 0
	for _, p := range panels {
		img, err := png.Decode(bytes.NewReader(p))
		if err != nil {
			return nil, fmt.Errorf("decode panel: %w", err)
		}
		imgs = append(imgs, img)
		height += img.Bounds().Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Src)
		y += b.Dy()
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
