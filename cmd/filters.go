package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
	cfgpkg "github.com/KaramelBytes/cpkdash/internal/config"
	"github.com/KaramelBytes/cpkdash/internal/dataset"
)

// filterFlags holds the filter options shared by view and export.
type filterFlags struct {
	top    bool
	period string
	n      int
	fleets []string
	units  []string
	cargos []string
	from   string
	to     string
	cpkMin string
	cpkMax string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.top, "top", false, "rank units: keep the best and worst N of --period (implied by --period)")
	fs.StringVar(&f.period, "period", "", "period for --top: "+joinPeriods())
	fs.IntVar(&f.n, "top-n", 0, "units kept at each end with --top (default from config)")
	fs.StringArrayVar(&f.fleets, "fleet", nil, "keep only this fleet (repeatable)")
	fs.StringArrayVar(&f.units, "unit", nil, "keep only this unit (repeatable)")
	fs.StringArrayVar(&f.cargos, "cargo", nil, "keep only this cargo type (repeatable)")
	fs.StringVar(&f.from, "from", "", "first date, YYYY-MM-DD (default: earliest date)")
	fs.StringVar(&f.to, "to", "", "last date, YYYY-MM-DD (default: latest date)")
	fs.StringVar(&f.cpkMin, "cpk-min", "", "lowest CPK kept (default: table minimum)")
	fs.StringVar(&f.cpkMax, "cpk-max", "", "highest CPK kept (default: table maximum)")
}

func (f *filterFlags) request(c *cfgpkg.Global) analysis.FilterRequest {
	req := analysis.FilterRequest{
		Mode:       analysis.ModeManual,
		Fleets:     f.fleets,
		Units:      f.units,
		CargoTypes: f.cargos,
		From:       f.from,
		To:         f.to,
		CPKMin:     f.cpkMin,
		CPKMax:     f.cpkMax,
		Period:     f.period,
		TopN:       f.n,
	}
	if f.top || f.period != "" {
		req.Mode = analysis.ModeTop
	}
	if req.TopN <= 0 && c != nil {
		req.TopN = c.TopN
	}
	return req
}

// selectRows loads path and applies the filter flags.
func selectRows(path string, f *filterFlags) (*analysis.Selection, error) {
	tbl, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	filter, err := f.request(currentConfig()).Filter()
	if err != nil {
		return nil, err
	}
	sel, err := filter.Apply(tbl)
	if err != nil {
		return nil, err
	}
	debugf("filter %T kept %d of %d rows", filter, sel.Table.Len(), tbl.Len())
	return sel, nil
}

func loadTable(path string) (*dataset.Table, error) {
	opt := currentConfig().DatasetOptions()
	opt.Parser.Sheet = flagSheet
	if flagDelimiter != "" {
		switch flagDelimiter {
		case ",":
			opt.Parser.Delimiter = ','
		case "\t", "tab":
			opt.Parser.Delimiter = '\t'
		case ";":
			opt.Parser.Delimiter = ';'
		default:
			return nil, fmt.Errorf("unsupported --delimiter: %s", flagDelimiter)
		}
	}
	tbl, err := dataset.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	debugf("loaded %s: %d rows, %d columns", tbl.Name, tbl.Len(), len(tbl.Columns))
	return tbl, nil
}

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = &cfgpkg.Global{DecimalSeparator: "."}
	}
	return cfg
}

func joinPeriods() string {
	out := ""
	for i, n := range analysis.PeriodNames() {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", n)
	}
	return out
}
