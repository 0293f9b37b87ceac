package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g. HDI_DATA_PATH.
const EnvPrefix = "HDI"

// flag name -> config key
var flagKeys = map[string]string{
	"data":          "data_path",
	"entity-column": "entity_column",
	"year":          "default_year",
	"margin":        "margin_fraction",
	"width":         "chart.width",
	"height":        "chart.height",
	"addr":          "server.addr",
	"rate-limit":    "server.rate_limit",
	"rate-burst":    "server.rate_burst",
	"log-level":     "log.level",
	"log-json":      "log.json",
}

// LoadError describes a config file that could not be used.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader handles loading configuration from files, environment and flags.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to see it
	d := NewConfig()
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("entity_column", d.EntityColumn)
	v.SetDefault("first_year", d.FirstYear)
	v.SetDefault("last_year", d.LastYear)
	v.SetDefault("default_year", d.DefaultYear)
	v.SetDefault("default_x", d.DefaultX)
	v.SetDefault("default_y", d.DefaultY)
	v.SetDefault("margin_fraction", d.MarginFraction)
	v.SetDefault("chart.width", d.Chart.Width)
	v.SetDefault("chart.height", d.Chart.Height)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_burst", d.Server.RateBurst)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)

	return &Loader{v: v}
}

// BindFlags wires whichever known flags the command defines.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional YAML file at path, merges env and flags over the
// defaults and validates the result.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, &LoadError{Path: path, Message: "config file not found", Err: err}
		}
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, &LoadError{Path: path, Message: "failed to read config file", Err: err}
		}
	}

	cfg := NewConfig()
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.v.Unmarshal(cfg, hook); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse configuration", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
