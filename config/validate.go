package config

import (
	"strings"

	"github.com/teranos/stubgen/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Input.Format {
	case "", FormatAuto, FormatJSON, FormatYAML:
	default:
		return errors.WithHint(
			errors.Newf("input.format must be auto, json or yaml, got %q", c.Input.Format),
			"omit input.format to detect the format from the file extension",
		)
	}

	switch c.Log.Level {
	case "", "warn", "info", "debug":
	default:
		return errors.Newf("log.level must be warn, info or debug, got %q", c.Log.Level)
	}

	// Suffix: empty = default, otherwise it must produce a stub file
	if c.Output.Suffix != "" && !strings.HasSuffix(c.Output.Suffix, ".pyi") {
		return errors.Newf("output.suffix must end in .pyi, got %q", c.Output.Suffix)
	}
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return errors.Newf("output.suffix cannot contain a path separator, got %q", c.Output.Suffix)
	}

	// Debounce: 0 = default, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}
