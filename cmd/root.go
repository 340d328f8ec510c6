package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/qbar/internal/config"
	"github.com/oakwood-commons/qbar/internal/ui"
	"github.com/oakwood-commons/qbar/internal/vocabulary"
	"github.com/oakwood-commons/qbar/pkg/logger"
	"github.com/oakwood-commons/qbar/pkg/settings"
)

// errNoTerminal is returned when the TUI is requested without a terminal.
var errNoTerminal = errors.New("the interactive query bar needs a terminal; use 'qbar query' in scripts")

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	debug      bool
	noColor    bool
	source     string
	dataset    string
	url        string
	vocabulary string
	logFile    string

	// newLogger builds the run's logger.
	newLogger func(logger.Options) logr.Logger
}

func newLoggerLocal(opts logger.Options) logr.Logger {
	_, lg := logger.New(opts)
	return lg
}

func newLoggerGlobal(opts logger.Options) logr.Logger {
	return *logger.Setup(opts)
}

// app is what a subcommand runs against once flags and config are resolved.
type app struct {
	cfg   config.Config
	run   *settings.Run
	log   logr.Logger
	vocab *vocabulary.Index
	close func()
}

type appContextKey struct{}

func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appContextKey{}).(*app); ok {
		return a
	}
	return nil
}

// newRootCmd builds the command tree. newLogger is newLoggerGlobal for the
// binary and newLoggerLocal in tests, which build many trees per process.
func newRootCmd(newLogger func(logger.Options) logr.Logger) *cobra.Command {
	o := &rootOptions{newLogger: newLogger}

	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [text]",
		Short: "Type a compact query, get live suggestions and matching records",
		Long: `qbar is a query bar for filtering records with a compact mini-language.

A query is "<type>[:<field>] <operator><value>":

  payment =4980a59c-7dcd-45ce-9470-ad4dd9c51171
  order:amount >3          amount of at least 3.00
  payment:amount 0.5..1.5  amount between 0.50 and 1.50
  order:currency =eur      currency is EUR (case-insensitive)

Without a subcommand qbar opens the interactive bar. Enter on a result
prints it and exits.`,
		Example:       "  qbar\n  qbar 'order:amount >3'\n  qbar query 'payment:currency =usd' -o json\n  qbar suggest pay\n  qbar serve --source memory",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a := appFrom(cmd); a != nil && a.close != nil {
				a.close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, strings.Join(args, " "))
		},
	}
	cmd.Version = cliVersionString()
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/qbar/config.yaml)")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&o.noColor, "no-color", false, "disable color output")
	pf.StringVar(&o.source, "source", "", "record source: memory or http (default from config)")
	pf.StringVar(&o.dataset, "dataset", "", "JSON, NDJSON, YAML or TOML dataset for the memory source")
	pf.StringVar(&o.url, "url", "", "base URL of the record API for the http source")
	pf.StringVar(&o.vocabulary, "vocabulary", "", "YAML file replacing the suggestion vocabulary")
	pf.StringVar(&o.logFile, "log-file", "", "append logs to this file (the TUI logs nowhere else)")

	cmd.AddCommand(
		newQueryCmd(),
		newSuggestCmd(),
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// setup resolves configuration and logging for cmd and stores the result in
// its context.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfgPath := config.ResolvePath(o.configFile)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	o.applyFlags(cmd.Flags(), &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	run := settings.NewCliParams()
	run.ConfigFile = cfgPath
	run.NoColor = cfg.UI.NoColor
	run.LogFile = cfg.App.LogFile
	run.Interactive = cmd.Name() == settings.CliBinaryName
	if cfg.App.Debug {
		run.MinLogLevel = -1
	}

	var out io.Writer
	closeLog := func() {}
	switch {
	case run.LogFile != "":
		f, err := logger.OpenLogFile(run.LogFile)
		if err != nil {
			return err
		}
		out = f
		closeLog = func() { _ = f.Close() }
	case run.LogToStderr():
		out = cmd.ErrOrStderr()
	}
	lg := o.newLogger(logger.Options{Level: run.MinLogLevel, Output: out})
	lg = lg.WithValues(logger.CommandKey, cmd.CommandPath())

	vocab, err := vocabulary.Load(cfg.Vocabulary.File)
	if err != nil {
		closeLog()
		return fmt.Errorf("load vocabulary: %w", err)
	}

	a := &app{cfg: cfg, run: run, log: lg, vocab: vocab, close: closeLog}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = settings.IntoContext(ctx, run)
	ctx = logger.WithLogger(ctx, &lg)
	ctx = context.WithValue(ctx, appContextKey{}, a)
	cmd.SetContext(ctx)
	lg.V(1).Info("configuration loaded", "config_file", cfgPath, "source", cfg.Source.Kind)
	return nil
}

// applyFlags overrides config values with the persistent flags the user set.
func (o *rootOptions) applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("debug") {
		cfg.App.Debug = o.debug
	}
	if fs.Changed("no-color") {
		cfg.UI.NoColor = o.noColor
	}
	if fs.Changed("log-file") {
		cfg.App.LogFile = o.logFile
	}
	if fs.Changed("vocabulary") {
		cfg.Vocabulary.File = o.vocabulary
	}
	if fs.Changed("dataset") {
		cfg.Source.Dataset = o.dataset
	}
	if fs.Changed("url") {
		cfg.Source.URL = o.url
		if !fs.Changed("source") {
			cfg.Source.Kind = config.SourceHTTP
		}
	}
	if fs.Changed("source") {
		cfg.Source.Kind = strings.ToLower(o.source)
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.UI.NoColor = true
	}
}

func runInteractive(cmd *cobra.Command, text string) error {
	a := appFrom(cmd)
	if !stdoutIsTerminal() {
		return errNoTerminal
	}
	src, err := buildSource(a.cfg, a.log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	model := ui.New(ctx, ui.Options{
		Source:     src,
		Vocabulary: a.vocab,
		UI:         a.cfg.UI,
		Search:     a.cfg.Search,
		Logger:     a.log,
		Text:       text,
	})

	opts, cleanup := programOptions(ctx)
	defer cleanup()
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("run interactive ui: %w", err)
	}
	if r, ok := model.Chosen(); ok {
		return printRecord(cmd.OutOrStdout(), r, a.cfg.UI.NoColor)
	}
	return nil
}

// Execute runs the root command with the process-wide logger.
func Execute() error {
	return newRootCmd(newLoggerGlobal).ExecuteContext(context.Background())
}
