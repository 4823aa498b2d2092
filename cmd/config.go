package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/chemkit/internal/config"
	"github.com/zjrosen/chemkit/internal/flags"
	"github.com/zjrosen/chemkit/internal/humanize"
)

func newConfigSetColorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config:set-color TOKEN HEX",
		Short: "Set a theme color in the config file",
		Long: fmt.Sprintf(`Set the color of one rendered formula part.

Tokens: %s

Example:
  chemkit config:set-color compound "#89B4FA"`, strings.Join(humanize.ColorTokens(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveThemeColor(app.configPath, args[0], args[1]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "theme.colors.%s = %s (%s)\n", args[0], args[1], app.configPath)
			return err
		},
	}
}

func newConfigSetFlagCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config:set-flag NAME true|false",
		Short: "Enable or disable a feature flag in the config file",
		Long: fmt.Sprintf(`Enable or disable a feature flag.

Flags: %s`, strings.Join(flags.Known(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(flags.Known(), args[0]) {
				return fmt.Errorf("unknown flag %q (known: %s)", args[0], strings.Join(flags.Known(), ", "))
			}
			enabled, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			if err := config.SaveFlag(app.configPath, args[0], enabled); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "flags.%s = %t (%s)\n", args[0], enabled, app.configPath)
			return err
		},
	}
}
