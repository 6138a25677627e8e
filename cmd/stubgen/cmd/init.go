package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default stubgen.toml",
		Long: `Write stubgen.toml holding the default configuration into dir (default:
the current directory). An existing file is kept unless --force is given, in
which case it is first backed up to stubgen.toml.back1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.WriteDefault(dir, force)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing stubgen.toml")
	return cmd
}
