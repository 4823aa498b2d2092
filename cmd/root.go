package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/chemkit/internal/catalog"
	"github.com/zjrosen/chemkit/internal/config"
	"github.com/zjrosen/chemkit/internal/flags"
	"github.com/zjrosen/chemkit/internal/humanize"
	"github.com/zjrosen/chemkit/internal/log"
	"github.com/zjrosen/chemkit/internal/paths"
	"github.com/zjrosen/chemkit/internal/presentation"
	"github.com/zjrosen/chemkit/internal/tracing"
)

const (
	envPrefix = "CHEMKIT"

	// annotationCatalog marks commands that need the shared catalog loaded
	// before they run.
	annotationCatalog = "chemkit/catalog"
)

var version = "dev"

// App carries the state shared by all commands of one invocation.
type App struct {
	cfgFile    string
	format     string
	noColor    bool
	noBuiltin  bool
	catalogDir string
	debug      bool

	cfg        config.Config
	configPath string

	provider *tracing.Provider
	catalog  *catalog.Catalog
	reports  []catalog.Report
	cleanup  []func()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "chemkit",
		Short: "Chemical compounds and reaction formulas from the command line",
		Long: `chemkit registers chemical compounds and reaction formulas from YAML
catalogs, resolves compound identities and renders formulas in
human-readable form.

The embedded built-in catalog is loaded first, then every *.yaml file of
the project catalog (./.chemkit/catalog or --catalog).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return app.close(cmd.Context())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&app.cfgFile, "config", "c", "",
		"config file (default: ./.chemkit/config.yaml, then ~/.config/chemkit/config.yaml)")
	pf.StringVarP(&app.format, "format", "f", "", "output format: text, json or markdown")
	pf.BoolVar(&app.noColor, "no-color", false, "disable ANSI colors")
	pf.BoolVar(&app.noBuiltin, "no-builtin", false, "do not load the built-in catalog")
	pf.StringVar(&app.catalogDir, "catalog", "", "catalog directory (default: ./.chemkit/catalog)")
	pf.BoolVar(&app.debug, "debug", false, "write debug log")

	rootCmd.AddCommand(
		newCompoundListCmd(app),
		newCompoundShowCmd(app),
		newFormulaListCmd(app),
		newFormulaShowCmd(app),
		newFormulaParseCmd(app),
		newResolveCmd(app),
		newCheckCmd(app),
		newConfigSetColorCmd(app),
		newConfigSetFlagCmd(app),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}

func (a *App) setup(cmd *cobra.Command) error {
	if err := a.initConfig(cmd); err != nil {
		return err
	}
	if err := a.initLogging(); err != nil {
		return err
	}

	provider, err := tracing.NewProvider(a.cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	a.provider = provider

	if cmd.Annotations[annotationCatalog] == "true" {
		return a.loadCatalog(cmd.Context())
	}
	return nil
}

// initConfig reads the config file, environment and flags into a.cfg.
//
// Lookup order:
//  1. --config
//  2. ./.chemkit/config.yaml
//  3. ~/.config/chemkit/config.yaml
//
// When no file exists a commented default is written at ./.chemkit/config.yaml
// (or at the --config path).
func (a *App) initConfig(cmd *cobra.Command) error {
	v := config.NewViper()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_", "-", "_"))
	v.AutomaticEnv()

	projectPath := paths.ProjectConfigPath(".")
	switch {
	case a.cfgFile != "":
		v.SetConfigFile(a.cfgFile)
	case fileExists(projectPath):
		v.SetConfigFile(projectPath)
	default:
		if dir := paths.UserConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case a.cfgFile != "" && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)):
			a.writeDefault(v, a.cfgFile)
		case errors.As(err, &notFound):
			a.writeDefault(v, projectPath)
		default:
			return fmt.Errorf("reading config: %w", err)
		}
	}

	a.configPath = v.ConfigFileUsed()
	if a.configPath == "" {
		a.configPath = projectPath
	}

	cfg, err := config.Unmarshal(v)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Format = a.format
	}
	if a.noColor || os.Getenv("NO_COLOR") != "" {
		cfg.Render.Color = false
	}
	if a.noBuiltin {
		cfg.BuiltIn = false
	}
	if f.Changed("catalog") {
		cfg.CatalogDir = a.catalogDir
	}
	if a.debug {
		cfg.Debug = true
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.cfg = cfg
	return nil
}

// writeDefault writes the default config; on failure chemkit continues with
// built-in defaults.
func (a *App) writeDefault(v *viper.Viper, path string) {
	if err := config.WriteDefaultConfig(path); err != nil {
		return
	}
	v.SetConfigFile(path)
	_ = v.ReadInConfig()
}

func (a *App) initLogging() error {
	if !a.cfg.Debug {
		return nil
	}
	cleanup, err := log.Init(a.cfg.LogPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	a.cleanup = append(a.cleanup, cleanup)
	log.Info(log.CatCmd, "Starting chemkit", "version", version, "config", a.configPath)
	return nil
}

// newCatalog creates an empty catalog wired to the config, flags and tracer.
func (a *App) newCatalog() (*catalog.Catalog, error) {
	return catalog.New(
		catalog.WithTracer(a.provider.Tracer()),
		catalog.WithFlags(flags.New(a.cfg.Flags)),
		catalog.WithCacheTTL(a.cfg.Cache.TTL),
	)
}

// loadCatalog loads the built-in catalog and the user catalog directory
// into a.catalog.
func (a *App) loadCatalog(ctx context.Context) error {
	cat, err := a.newCatalog()
	if err != nil {
		return err
	}
	a.catalog = cat
	a.cleanup = append(a.cleanup, cat.Close)

	reports, err := a.populate(ctx, cat, a.cfg.CatalogDir)
	a.reports = reports
	return err
}

// populate loads the built-in catalog (unless disabled) and the resolved
// user catalog dir. A missing default dir is skipped; a missing explicit
// dir is an error.
func (a *App) populate(ctx context.Context, cat *catalog.Catalog, dir string) ([]catalog.Report, error) {
	var reports []catalog.Report
	if a.cfg.BuiltIn {
		r, err := cat.LoadBuiltIn(ctx)
		reports = append(reports, r)
		if err != nil {
			return reports, fmt.Errorf("loading built-in catalog: %w", err)
		}
	}

	resolved := paths.ResolveCatalogDir(dir)
	if !dirExists(resolved) {
		if dir != "" {
			return reports, fmt.Errorf("catalog directory not found: %s", resolved)
		}
		log.Debug(log.CatCmd, "No project catalog", "dir", resolved)
		return reports, nil
	}

	r, err := cat.LoadDir(ctx, resolved, catalog.SourceUser)
	reports = append(reports, r)
	if err != nil {
		return reports, fmt.Errorf("loading catalog %s: %w", resolved, err)
	}
	return reports, nil
}

func (a *App) catalogDirFor(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.CatalogDir
}

// formatter builds the output formatter for cmd. hoverable overrides the
// configured render.hoverable when set.
func (a *App) formatter(cmd *cobra.Command, hoverable *bool) (*presentation.Formatter, error) {
	out := cmd.OutOrStdout()

	term := lipgloss.NewRenderer(out)
	markdownStyle := a.cfg.Render.MarkdownStyle
	if !a.cfg.Render.Color {
		term.SetColorProfile(termenv.Ascii)
		markdownStyle = "notty"
	}

	styles, err := humanize.NewStyles(term, a.cfg.Theme.FlattenedColors())
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}

	hover := a.cfg.Render.Hoverable
	if hoverable != nil {
		hover = *hoverable
	}

	return presentation.NewFormatter(out, presentation.Options{
		Format: a.cfg.Format,
		Humanizer: humanize.NewRenderer(
			humanize.WithStyles(styles),
			humanize.WithLanguage(a.cfg.Render.LanguageTag()),
		),
		Terminal:      term,
		Hoverable:     hover,
		MarkdownStyle: markdownStyle,
	})
}

func (a *App) close(ctx context.Context) error {
	var err error
	if a.provider != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		err = a.provider.Shutdown(ctx)
	}
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
