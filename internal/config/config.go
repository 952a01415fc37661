// Package config merges defaults, the optional carbonara.toml config
// file, and command-line flags, with flags taking precedence.
package config

import (
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sevki/carbonara/internal/errors"
	"github.com/sevki/carbonara/internal/measure"
	"github.com/sevki/carbonara/internal/report"
)

// Config is the resolved application configuration.
type Config struct {
	Method     string  `mapstructure:"method"`
	IntervalMS int     `mapstructure:"interval"`
	DurationMS int     `mapstructure:"duration"`
	Format     string  `mapstructure:"format"`
	CO2ePerKWh float64 `mapstructure:"co2e"`
	TDPWatts   float64 `mapstructure:"tdp"`
	HistoryDB  string  `mapstructure:"history"`
	Debug      bool    `mapstructure:"debug"`
	Verbose    bool    `mapstructure:"verbose"`
}

// Load resolves the configuration. The config file is carbonara.toml
// in /etc or $HOME/.config, overridable via the CARBONARA_CONFIG
// environment variable. Flags bound on fs win over file values, which
// win over defaults; fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("method", "auto")
	v.SetDefault("interval", 100)
	v.SetDefault("duration", 1000)
	v.SetDefault("format", "human")
	v.SetDefault("co2e", 436.0)
	v.SetDefault("tdp", measure.DefaultTDPWatts)
	v.SetDefault("history", "")
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)

	v.SetConfigName("carbonara")
	v.SetConfigType("toml")
	if path := os.Getenv("CARBONARA_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("/etc")
		v.AddConfigPath("$HOME/.config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrReadConfig, err)
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, errors.Wrap(errors.ErrBindFlags, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrReadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values no strategy or formatter could run with.
func (c *Config) Validate() error {
	if _, err := measure.ParseSource(c.Method); err != nil {
		return err
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.IntervalMS <= 0 {
		return errors.WithMessage(measure.ErrInvalidConfig, "interval must be positive")
	}
	if c.DurationMS <= 0 {
		return errors.WithMessage(measure.ErrInvalidConfig, "duration must be positive")
	}
	if c.TDPWatts <= 0 {
		return errors.WithMessage(measure.ErrInvalidConfig, "tdp watts must be positive")
	}
	if c.CO2ePerKWh < 0 {
		return errors.WithMessage(measure.ErrInvalidConfig, "co2e factor must be non-negative")
	}

	return nil
}

// MeasureConfig translates the resolved configuration into the
// measurement engine's terms.
func (c *Config) MeasureConfig() (measure.Config, error) {
	source, err := measure.ParseSource(c.Method)
	if err != nil {
		return measure.Config{}, err
	}

	return measure.Config{
		Duration:       time.Duration(c.DurationMS) * time.Millisecond,
		SampleInterval: time.Duration(c.IntervalMS) * time.Millisecond,
		Source:         source,
		TDPWatts:       c.TDPWatts,
	}, nil
}
