// Package config provides configuration loading for the explorer commands.
// Values come from defaults, an optional YAML file, HDI_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"hdiexplorer/internal/engine"
	"hdiexplorer/internal/plot"
	"hdiexplorer/internal/session"
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// DataPath is the CSV file read at startup.
	DataPath string `mapstructure:"data_path"`
	// EntityColumn names the static column that labels points.
	EntityColumn string `mapstructure:"entity_column"`

	FirstYear   int    `mapstructure:"first_year"`
	LastYear    int    `mapstructure:"last_year"`
	DefaultYear int    `mapstructure:"default_year"`
	DefaultX    string `mapstructure:"default_x"`
	DefaultY    string `mapstructure:"default_y"`

	// MarginFraction pads the global min/max by this share of the span.
	MarginFraction float64 `mapstructure:"margin_fraction"`

	Chart  ChartConfig  `mapstructure:"chart"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	// RateBurst is how many requests a client may send at once before
	// RateLimit applies. One slider step costs three requests.
	RateBurst       int           `mapstructure:"rate_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	st := session.DefaultState()
	po := plot.DefaultOptions()
	return &Config{
		DataPath:       "data.csv",
		EntityColumn:   po.EntityColumn,
		FirstYear:      engine.SupportedYears.First,
		LastYear:       engine.SupportedYears.Last,
		DefaultYear:    st.Year,
		DefaultX:       st.X,
		DefaultY:       st.Y,
		MarginFraction: po.MarginFraction,
		Chart:          ChartConfig{Width: po.Width, Height: po.Height},
		Server: ServerConfig{
			Addr:            ":8080",
			RateLimit:       50,
			RateBurst:       150,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("%w: data_path is empty", ErrInvalid)
	}
	if err := c.Years().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !c.Years().Contains(c.DefaultYear) {
		return fmt.Errorf("%w: default_year %d outside %d..%d", ErrInvalid, c.DefaultYear, c.FirstYear, c.LastYear)
	}
	if c.MarginFraction < 0 {
		return fmt.Errorf("%w: margin_fraction must not be negative", ErrInvalid)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("%w: chart size %dx%d", ErrInvalid, c.Chart.Width, c.Chart.Height)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalid)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("%w: server.rate_burst must be at least 1", ErrInvalid)
	}
	return nil
}

func (c *Config) Years() engine.YearRange {
	return engine.YearRange{First: c.FirstYear, Last: c.LastYear}
}

func (c *Config) PlotOptions() plot.Options {
	return plot.Options{
		Width:          c.Chart.Width,
		Height:         c.Chart.Height,
		MarginFraction: c.MarginFraction,
		EntityColumn:   c.EntityColumn,
	}
}

func (c *Config) InitialState() session.State {
	return session.State{Year: c.DefaultYear, X: c.DefaultX, Y: c.DefaultY}
}
