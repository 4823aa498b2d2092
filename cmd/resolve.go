package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrNotResolved is returned when an identity has no compound.
var ErrNotResolved = errors.New("identity not resolved")

func newResolveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve IDENTITY",
		Short: "Resolve a compound identity",
		Long: `Resolve a namespaced identity to its compound.

Namespaces:
  element    element symbol or English name, e.g. element:fe
  chemical   identity token of a registered compound, e.g. chemical:ca-oh.2`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationCatalog: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.formatter(cmd, nil)
			if err != nil {
				return err
			}
			compound, ok := app.catalog.Resolve(cmd.Context(), args[0])
			if err := f.FormatResolved(args[0], compound); err != nil {
				return err
			}
			if !ok {
				return ErrNotResolved
			}
			return nil
		},
	}
}
