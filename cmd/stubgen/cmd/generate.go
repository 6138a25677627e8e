package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/typegen"
)

func newGenerateCmd() *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "generate <schema-document>",
		Short: "Generate stubs from a schema document",
		Long: `Generate one .pyi stub per requested file of the schema document.

Files are only written once every stub generated successfully, and files
whose content did not change are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := generate(args[0])
			if err != nil {
				return err
			}
			if toStdout {
				return printStubs(cmd, gen.result)
			}

			written, err := typegen.Write(gen.result, gen.outDir, gen.writeOptions())
			if err != nil {
				return err
			}
			reportWritten(gen, written)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory (default: next to the schema document)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print stubs to stdout instead of writing files")
	return cmd
}

// printStubs writes every stub to stdout. With more than one file each is
// preceded by a comment naming its path.
func printStubs(cmd *cobra.Command, result *typegen.Result) error {
	out := cmd.OutOrStdout()
	for i, f := range result.Files {
		if len(result.Files) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "# %s\n", f.Path)
		}
		if _, err := fmt.Fprint(out, f.Content); err != nil {
			return err
		}
	}
	return nil
}

func reportWritten(gen *generation, written []string) {
	if len(written) == 0 {
		pterm.Info.Printfln("Stubs in %s are up to date", gen.outDir)
		return
	}
	for _, path := range written {
		pterm.Success.Printfln("Wrote %s", path)
	}
}
