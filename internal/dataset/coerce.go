package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	isoLayouts = []string{
		"2006-01-02", "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04:05",
		time.RFC3339, "2006/01/02", "2006/01/02 15:04:05",
	}
	monthFirstLayouts = []string{"1/2/2006", "1/2/2006 15:04", "1/2/2006 15:04:05", "1-2-2006", "1/2/06"}
	dayFirstLayouts   = []string{"2/1/2006", "2/1/2006 15:04", "2/1/2006 15:04:05", "2-1-2006", "2/1/06"}
)

// parseDate returns nil for anything it cannot read. Slash dates prefer
// month-first unless dayFirst is set, and fall back to the other order.
func parseDate(s string, opt Options, serial bool) *time.Time {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	layouts := make([]string, 0, len(isoLayouts)+len(monthFirstLayouts)+len(dayFirstLayouts))
	layouts = append(layouts, isoLayouts...)
	if opt.DayFirst {
		layouts = append(layouts, dayFirstLayouts...)
		layouts = append(layouts, monthFirstLayouts...)
	} else {
		layouts = append(layouts, monthFirstLayouts...)
		layouts = append(layouts, dayFirstLayouts...)
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			return wallClock(t)
		}
	}
	if serial {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 2958466 {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				return wallClock(t)
			}
		}
	}
	return nil
}

// wallClock drops the zone so calendar fields compare the way they were written.
func wallClock(t time.Time) *time.Time {
	w := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return &w
}

// parseNumber reads locale-formatted numbers. NaN and Inf count as missing.
func parseNumber(s string, opt Options) *float64 {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		// auto detect
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		// Without a configured thousands separator, only strict digit grouping is stripped.
		intPart := raw
		if i := strings.IndexRune(raw, dec); i >= 0 {
			intPart = raw[:i]
		}
		for _, sep := range []rune{',', '.', ' '} {
			if sep == dec || !strings.ContainsRune(raw, sep) {
				continue
			}
			if !grouped(intPart, sep) {
				return nil
			}
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// grouped reports whether s is an integer written with sep every three digits, like 1,234,567.
func grouped(s string, sep rune) bool {
	s = strings.TrimLeft(s, "+-")
	groups := strings.Split(s, string(sep))
	if len(groups) < 2 {
		return false
	}
	for i, g := range groups {
		if g == "" || len(g) > 3 || (i > 0 && len(g) != 3) {
			return false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
