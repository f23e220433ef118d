package cmd

import (
	"fmt"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/cpkdash/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Input flags (override config if set)
	flagDayFirst  bool
	flagDecimal   string
	flagThousands string
	flagDelimiter string
	flagSheet     string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "cpkdash",
	Short: "cpkdash: cost-per-kilometer dashboard for fleet data",
	Long: `cpkdash loads a fleet operations table (CSV or XLSX), filters it by fleet, unit,
cargo type, date and CPK range or by best/worst performers of a period, and
renders summary views as Markdown, JSON or PNG charts. It can also serve the
same views over an HTTP API.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cpkdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&flagDayFirst, "day-first", false, "read ambiguous dates as DD/MM/YYYY (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator: '.'|'comma'|'auto' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagThousands, "thousands", "", "thousands separator: ','|'.'|'space' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "XLSX: sheet name (first sheet if omitted)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("day-first") {
		cfg.DayFirst = flagDayFirst
	}
	if f.Changed("decimal") {
		switch strings.ToLower(strings.TrimSpace(flagDecimal)) {
		case ",", "comma":
			cfg.DecimalSeparator = ","
		case ".", "dot":
			cfg.DecimalSeparator = "."
		case "auto":
			cfg.DecimalSeparator = ""
		default:
			fmt.Fprintf(os.Stderr, "⚠ Warning: ignoring unsupported --decimal %q\n", flagDecimal)
		}
	}
	if f.Changed("thousands") {
		switch strings.ToLower(strings.TrimSpace(flagThousands)) {
		case ",", ".":
			cfg.ThousandsSeparator = strings.TrimSpace(flagThousands)
		case "space", " ":
			cfg.ThousandsSeparator = " "
		default:
			fmt.Fprintf(os.Stderr, "⚠ Warning: ignoring unsupported --thousands %q\n", flagThousands)
		}
	}
	debugf("config: %+v", *cfg)
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
	}
}
