package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/typegen"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <schema-document>",
		Short: "Check that stubs on disk are up to date",
		Long: `Generate stubs in memory and compare them with the files on disk.

Line endings are normalized before comparing. Differences are shown as
unified diffs from the file on disk to the generated content.

Exit codes:
  0 - Stubs are up to date
  1 - Stubs are out of date (diff shown)
  2 - Error during check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := generate(args[0])
			if err != nil {
				return err
			}

			result, err := typegen.Compare(gen.result, gen.outDir, gen.writeOptions())
			if err != nil {
				return errors.Wrap(err, "failed to compare stubs")
			}
			if result.UpToDate {
				pterm.Success.Println("Stubs are up to date")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, d := range result.Differences {
				if d.Missing {
					pterm.Warning.Printfln("%s is missing", d.Path)
					continue
				}
				pterm.Warning.Printfln("%s differs", d.Path)
				fmt.Fprint(out, d.Diff)
			}
			return errors.WithHint(ErrDrift, "run 'stubgen generate' to update them")
		},
	}

	cmd.Flags().StringP("output", "o", "", "Directory holding the stubs (default: next to the schema document)")
	return cmd
}
