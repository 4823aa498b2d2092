package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompoundListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compound:list",
		Short: "List all registered compounds",
		Long: `List all registered compounds with identity, molar mass and description.

Examples:
  chemkit compound:list
  chemkit compound:list --format json | jq '.[].identity'`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationCatalog: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := app.formatter(cmd, nil)
			if err != nil {
				return err
			}
			return f.FormatCompounds(app.catalog.Compounds())
		},
	}
}

func newCompoundShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compound:show NAME",
		Short: "Show one compound",
		Long: `Show the molar mass, terms and atomic composition of a compound.

NAME is the registered name (case-sensitive), e.g. H2SO4 or Ca(OH)2.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationCatalog: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, ok := app.catalog.Compound(args[0])
			if !ok {
				return fmt.Errorf("compound %q not found", args[0])
			}
			f, err := app.formatter(cmd, nil)
			if err != nil {
				return err
			}
			return f.FormatCompound(cc)
		},
	}
}
