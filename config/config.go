// Package config loads stubgen settings.
//
// Precedence (lowest to highest): built-in defaults < stubgen.toml (found by
// walking up from the working directory) < STUBGEN_* environment variables.
package config

// Config represents the stubgen configuration
type Config struct {
	Output OutputConfig `mapstructure:"output" toml:"output"`
	Input  InputConfig  `mapstructure:"input" toml:"input"`
	Log    LogConfig    `mapstructure:"log" toml:"log"`
	Watch  WatchConfig  `mapstructure:"watch" toml:"watch"`
}

// OutputConfig configures where and how stubs are written
type OutputConfig struct {
	Dir     string `mapstructure:"dir" toml:"dir"`           // Output root; empty = next to the schema document
	Suffix  string `mapstructure:"suffix" toml:"suffix"`     // Appended to the schema file stem (default: _capnp.pyi)
	PyTyped bool   `mapstructure:"py_typed" toml:"py_typed"` // Write a PEP 561 py.typed marker (default: true)
	Header  bool   `mapstructure:"header" toml:"header"`     // Emit the docstring + generated-code header (default: true)
}

// InputConfig configures schema document decoding
type InputConfig struct {
	Format string `mapstructure:"format" toml:"format"` // auto, json or yaml
}

// LogConfig configures diagnostics
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json"`
	Level string `mapstructure:"level" toml:"level"` // warn, info or debug
}

// WatchConfig configures the watch command
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"` // Quiet period before regenerating (default: 300)
}

// Input formats
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FileName is the project configuration file searched for by Load
const FileName = "stubgen.toml"

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
