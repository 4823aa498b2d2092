package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/chemkit/internal/catalog"
	"github.com/zjrosen/chemkit/internal/chem"
	"github.com/zjrosen/chemkit/internal/pubsub"
)

// ErrUnresolvedFormula is returned by formula:parse when the formula names
// an unknown compound.
var ErrUnresolvedFormula = errors.New("formula references unknown compounds")

func newFormulaListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "formula:list",
		Short:       "List all registered formulas",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationCatalog: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := app.formatter(cmd, nil)
			if err != nil {
				return err
			}
			return f.FormatFormulas(app.catalog.Formulas())
		},
	}
}

func newFormulaShowCmd(app *App) *cobra.Command {
	var hover bool

	cmd := &cobra.Command{
		Use:   "formula:show ID",
		Short: "Show one formula",
		Long: `Show one formula with its sides and conditions.

With --hover the conditions are attached to "===" as a tooltip and listed
below the formula instead of being inlined.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationCatalog: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFormulaID(args[0])
			if err != nil {
				return err
			}
			formula, ok := app.catalog.Formula(id)
			if !ok {
				return fmt.Errorf("formula %d not found", id)
			}

			var hoverable *bool
			if cmd.Flags().Changed("hover") {
				hoverable = &hover
			}
			f, err := app.formatter(cmd, hoverable)
			if err != nil {
				return err
			}
			return f.FormatFormula(formula)
		},
	}
	cmd.Flags().BoolVar(&hover, "hover", false, "render conditions as a tooltip")
	return cmd
}

func newFormulaParseCmd(app *App) *cobra.Command {
	var (
		id         int32
		conditions []string
	)

	cmd := &cobra.Command{
		Use:   "formula:parse RAW",
		Short: "Parse a formula against the catalog",
		Long: `Parse a formula against the loaded compounds and print it humanized.

An unknown compound or a conflict with a registered id is printed as a
diagnostic. A malformed formula (not exactly one "===") is an error.

Examples:
  chemkit formula:parse "Zn + H2SO4 === ZnSO4 + H2"
  chemkit formula:parse "2H2O === 2H2 + O2" --condition electrolysis
  chemkit formula:parse "2H2 + O2 === 2H2O" --id 1`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationCatalog: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]chem.Condition, 0, len(conditions))
			for _, s := range conditions {
				c, err := chem.ParseCondition(s)
				if err != nil {
					return err
				}
				parsed = append(parsed, c)
			}

			f, err := app.formatter(cmd, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			events := pubsub.NewListener[catalog.Diagnostic](ctx, app.catalog)

			formula, err := app.catalog.DefineFormula(ctx, chem.FormulaID(id), args[0], chem.WithConditions(parsed...))
			if err != nil {
				return err
			}

			var diags []catalog.Diagnostic
			for _, event := range events.Drain() {
				diags = append(diags, event.Payload)
			}
			if len(diags) > 0 {
				if err := f.FormatDiagnostics(diags); err != nil {
					return err
				}
			}
			if formula.Empty() {
				return ErrUnresolvedFormula
			}
			return f.FormatFormula(formula)
		},
	}
	cmd.Flags().Int32Var(&id, "id", 0, "formula id to register under")
	cmd.Flags().StringArrayVar(&conditions, "condition", nil, "reaction condition (repeatable)")
	return cmd
}

func parseFormulaID(s string) (chem.FormulaID, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid formula id %q: %w", s, err)
	}
	return chem.FormulaID(n), nil
}
