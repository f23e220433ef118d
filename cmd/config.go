package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/cpkdash/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set cpkdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "bearer_token: %s\n", mask(cfg.BearerToken))
		fmt.Fprintf(out, "max_upload_mb: %d\n", cfg.MaxUploadMB)
		fmt.Fprintf(out, "session_ttl_min: %d\n", cfg.SessionTTLMin)
		fmt.Fprintf(out, "max_sessions: %d\n", cfg.MaxSessions)
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "day_first: %t\n", cfg.DayFirst)
		fmt.Fprintf(out, "decimal_separator: %q\n", cfg.DecimalSeparator)
		fmt.Fprintf(out, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		fmt.Fprintf(out, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", cfg.ChartHeight)
		fmt.Fprintf(out, "export_filename: %s\n", cfg.ExportFilename)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "listen_addr":
			cfg.ListenAddr = val
		case "bearer_token":
			cfg.BearerToken = val
		case "max_upload_mb", "session_ttl_min", "max_sessions", "top_n", "chart_width", "chart_height":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			setInt(key, i)
		case "day_first":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for day_first: %w", err)
			}
			cfg.DayFirst = b
		case "decimal_separator":
			cfg.DecimalSeparator = val
		case "thousands_separator":
			cfg.ThousandsSeparator = val
		case "export_filename":
			cfg.ExportFilename = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setInt(key string, v int) {
	switch key {
	case "max_upload_mb":
		cfg.MaxUploadMB = v
	case "session_ttl_min":
		cfg.SessionTTLMin = v
	case "max_sessions":
		cfg.MaxSessions = v
	case "top_n":
		cfg.TopN = v
	case "chart_width":
		cfg.ChartWidth = v
	case "chart_height":
		cfg.ChartHeight = v
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
