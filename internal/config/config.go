package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cpkdash/internal/chart"
	"github.com/KaramelBytes/cpkdash/internal/dataset"
)

// Global configuration structure.
type Global struct {
	// HTTP server
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
	BearerToken   string `mapstructure:"bearer_token" yaml:"bearer_token"`
	MaxUploadMB   int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
	MaxSessions   int    `mapstructure:"max_sessions" yaml:"max_sessions"`

	// Pipeline
	TopN               int    `mapstructure:"top_n" yaml:"top_n"`
	DayFirst           bool   `mapstructure:"day_first" yaml:"day_first"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Output
	ChartWidth     int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight    int    `mapstructure:"chart_height" yaml:"chart_height"`
	ExportFilename string `mapstructure:"export_filename" yaml:"export_filename"`
}

// DefaultPath is ~/.cpkdash/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cpkdash", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to DefaultPath, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load() // ignore missing file

	v := viper.New()
	v.SetEnvPrefix("CPKDASH")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("bearer_token", "")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("session_ttl_min", 60)
	v.SetDefault("max_sessions", 64)
	v.SetDefault("top_n", 10)
	v.SetDefault("day_first", false)
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("chart_width", chart.DefaultOptions().Width)
	v.SetDefault("chart_height", chart.DefaultOptions().Height)
	v.SetDefault("export_filename", dataset.DefaultExportName)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the pipeline cannot use.
func (c *Global) Validate() error {
	if c.MaxUploadMB < 0 || c.SessionTTLMin < 0 || c.MaxSessions < 0 {
		return fmt.Errorf("max_upload_mb, session_ttl_min and max_sessions must not be negative")
	}
	if c.TopN < 0 {
		return fmt.Errorf("top_n must not be negative, got %d", c.TopN)
	}
	if _, err := separator(c.DecimalSeparator); err != nil {
		return fmt.Errorf("decimal_separator: %w", err)
	}
	if _, err := separator(c.ThousandsSeparator); err != nil {
		return fmt.Errorf("thousands_separator: %w", err)
	}
	return nil
}

// DatasetOptions translates the pipeline settings for dataset.Load.
func (c *Global) DatasetOptions() dataset.Options {
	opt := dataset.DefaultOptions()
	opt.DayFirst = c.DayFirst
	if r, err := separator(c.DecimalSeparator); err == nil {
		opt.DecimalSeparator = r
	}
	if r, err := separator(c.ThousandsSeparator); err == nil {
		opt.ThousandsSeparator = r
	}
	return opt
}

// ChartOptions returns the configured image size.
func (c *Global) ChartOptions() chart.Options {
	return chart.Options{Width: c.ChartWidth, Height: c.ChartHeight}
}

// SessionTTL converts the idle timeout to a duration.
func (c *Global) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// MaxUploadBytes converts the upload limit to bytes.
func (c *Global) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// separator accepts "" (auto-detect) or exactly one character.
func separator(s string) (rune, error) {
	r := []rune(s)
	switch len(r) {
	case 0:
		return 0, nil
	case 1:
		return r[0], nil
	}
	return 0, fmt.Errorf("want a single character, got %q", s)
}
