package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultSuffix     = "_capnp.pyi"
	DefaultDebounceMS = 300
	DefaultLogLevel   = "warn"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Output defaults
	v.SetDefault("output.dir", "")
	v.SetDefault("output.suffix", DefaultSuffix)
	v.SetDefault("output.py_typed", true)
	v.SetDefault("output.header", true)

	// Input defaults
	v.SetDefault("input.format", FormatAuto)

	// Log defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", DefaultLogLevel)

	// Watch defaults
	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
}

// Default returns the configuration produced by SetDefaults alone
func Default() *Config {
	return &Config{
		Output: OutputConfig{Suffix: DefaultSuffix, PyTyped: true, Header: true},
		Input:  InputConfig{Format: FormatAuto},
		Log:    LogConfig{Level: DefaultLogLevel},
		Watch:  WatchConfig{DebounceMS: DefaultDebounceMS},
	}
}

// GetSuffix returns the output suffix (default: _capnp.pyi)
func (c *Config) GetSuffix() string {
	if c.Output.Suffix == "" {
		return DefaultSuffix
	}
	return c.Output.Suffix
}

// GetDebounceMS returns the watch debounce in milliseconds (default: 300)
func (c *Config) GetDebounceMS() int {
	if c.Watch.DebounceMS == 0 {
		return DefaultDebounceMS
	}
	return c.Watch.DebounceMS
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Output: {Dir: %q, Suffix: %s}, Input: {Format: %s}, Log: {Level: %s}}",
		c.Output.Dir, c.GetSuffix(), c.Input.Format, c.Log.Level)
}
