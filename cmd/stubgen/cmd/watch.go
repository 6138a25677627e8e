package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/config"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/typegen"
	"github.com/teranos/stubgen/typegen/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <schema-document>",
		Short: "Regenerate stubs whenever the schema document changes",
		Long: `Generate stubs once, then watch the schema document and regenerate on
every change. Changes within watch.debounce_ms of each other are coalesced.
A failed run is logged and watching continues. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, args[0])
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory (default: next to the schema document)")
	return cmd
}

func runWatch(ctx context.Context, doc string) error {
	regenerate := func(path string) error {
		gen, err := generate(path)
		if err != nil {
			return err
		}
		written, err := typegen.Write(gen.result, gen.outDir, gen.writeOptions())
		if err != nil {
			return err
		}
		reportWritten(gen, written)
		return nil
	}

	if err := regenerate(doc); err != nil {
		logger.Errorw("Initial generation failed", logger.FieldFile, doc, logger.FieldError, err)
		pterm.Error.Printfln("%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	debounce := time.Duration(cfg.GetDebounceMS()) * time.Millisecond

	w, err := watch.New(doc, debounce, regenerate)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Watching %s (Ctrl-C to stop)", w.Path())
	return w.Run(ctx)
}
