// Package cmd holds the stubgen command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/config"
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

// ErrDrift is returned by check when stubs on disk differ from the schema
var ErrDrift = errors.New("stubs are out of date")

// Exit codes
const (
	ExitOK    = 0
	ExitDrift = 1
	ExitError = 2
)

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrDrift):
		return ExitDrift
	default:
		return ExitError
	}
}

// NewRootCmd builds the stubgen command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stubgen",
		Short: "Generate Python type stubs from a Cap'n Proto schema graph",
		Long: `stubgen turns a compiled Cap'n Proto schema graph into .pyi stubs for pycapnp.

The schema graph is read from a JSON or YAML document holding every node
reachable from the requested files. One stub is produced per requested file.

Available commands:
  generate - Generate stubs from a schema document
  check    - Verify that stubs on disk match the schema document
  watch    - Regenerate stubs whenever the schema document changes
  init     - Write a default stubgen.toml
  version  - Show version information

Examples:
  stubgen generate schema.yaml              # Write stubs next to the document
  stubgen generate schema.json -o stubs/    # Write stubs under stubs/
  stubgen generate schema.yaml --stdout     # Print stubs instead of writing
  stubgen check schema.yaml                 # Exit 1 when stubs drifted`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	root.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// setup binds flags to the configuration and initializes the global logger
func setup(cmd *cobra.Command, args []string) error {
	v := config.GetViper()
	if err := v.BindPFlag("log.json", cmd.Root().PersistentFlags().Lookup("log-json")); err != nil {
		return errors.Wrap(err, "failed to bind --log-json")
	}
	if f := cmd.Flags().Lookup("output"); f != nil {
		if err := v.BindPFlag("output.dir", f); err != nil {
			return errors.Wrap(err, "failed to bind --output")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	if lvl := logger.ParseLevel(cfg.Log.Level); lvl > verbosity {
		verbosity = lvl
	}
	if err := logger.InitializeTo(cmd.ErrOrStderr(), cfg.Log.JSON, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	if path := config.FindProjectConfig(); path != "" {
		warnUnknownKeys(path)
	}

	logger.Debugw("Configuration loaded",
		logger.FieldComponent, "config",
		"config", cfg.String())
	return nil
}

// warnUnknownKeys logs keys of the project config that stubgen ignores
func warnUnknownKeys(path string) {
	keys, err := config.UnknownKeys(path)
	if err != nil {
		logger.Warnw("Could not inspect project config", logger.FieldFile, path, logger.FieldError, err)
		return
	}
	for _, k := range keys {
		logger.Warnw("Unknown configuration key", logger.FieldFile, path, "key", k)
	}
}
