package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/chemkit/internal/log"
	"github.com/zjrosen/chemkit/internal/paths"
	"github.com/zjrosen/chemkit/internal/presentation"
	"github.com/zjrosen/chemkit/internal/watcher"
)

func newCheckCmd(app *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check [DIR]",
		Short: "Load a catalog and report diagnostics",
		Long: `Load the built-in catalog and DIR (default: the configured catalog dir)
into a fresh registry set and print every diagnostic.

With --watch the catalog is checked again whenever a YAML file in DIR
changes, until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.formatter(cmd, nil)
			if err != nil {
				return err
			}
			dir := app.catalogDirFor(args)

			if !watch {
				return app.check(cmd.Context(), f, dir)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.watch(ctx, f, cmd.ErrOrStderr(), dir)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check when catalog files change")
	return cmd
}

// check loads a fresh catalog and prints the load reports.
func (a *App) check(ctx context.Context, f *presentation.Formatter, dir string) error {
	cat, err := a.newCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	reports, loadErr := a.populate(ctx, cat, dir)
	if err := f.FormatReport(reports...); err != nil {
		return err
	}
	return loadErr
}

// watch runs check once and again after every debounced change until ctx
// is done. Load errors are printed and watching continues.
func (a *App) watch(ctx context.Context, f *presentation.Formatter, errOut io.Writer, dir string) error {
	resolved := paths.ResolveCatalogDir(dir)
	w, err := watcher.New(watcher.Config{CatalogDir: resolved, DebounceDur: a.cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	a.recheck(ctx, f, errOut, dir)
	for {
		select {
		case <-ctx.Done():
			log.Debug(log.CatCmd, "Stopping catalog watch", "dir", resolved)
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			log.Debug(log.CatCmd, "Catalog changed", "dir", resolved)
			a.recheck(ctx, f, errOut, dir)
		}
	}
}

func (a *App) recheck(ctx context.Context, f *presentation.Formatter, errOut io.Writer, dir string) {
	if err := a.check(ctx, f, dir); err != nil {
		log.ErrorErr(log.CatCmd, "Catalog check failed", err)
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
	}
}
