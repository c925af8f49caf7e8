package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/msalah0e/ontoscope/internal/config"
	"github.com/msalah0e/ontoscope/internal/logging"
	"github.com/msalah0e/ontoscope/internal/ui"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	cfgPath string
	apiURL  string
	noColor bool
	verbose bool

	cfg       *config.Config
	logger    *slog.Logger
	sessionID string
)

var rootCmd = &cobra.Command{
	Use:   "ontoscope",
	Short: "ontoscope: explore ontology elements from the terminal",
	Long: ui.Brand.Sprint(ui.Scope+" ontoscope") + " - search ontology elements, read their contexts and walk their relations\n" +
		ui.Subtle.Sprint("Talks to an ontology API server (default http://localhost:8080/api)"),
	Version:       version + " " + ui.Scope,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	rootCmd.SetVersionTemplate("ontoscope {{ .Version }}\n")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Config file (default "+config.Path()+")")
	pf.StringVar(&apiURL, "api", "", "API base URL, overrides api.base_url")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log debug records and progress to stderr")

	rootCmd.AddCommand(
		searchCmd(),
		showCmd(),
		graphCmd(),
		ontologiesCmd(),
		uploadCmd(),
		sourceCmd(),
		configCmd(),
		completionCmd(),
		tuiCmd(),
	)
}

// setup loads config and builds the logger every command shares.
func setup(cmd *cobra.Command) error {
	path := cfgPath
	if path == "" {
		path = config.Path()
	}
	c, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if apiURL != "" {
		c.API.BaseURL = apiURL
	}
	if noColor {
		c.UI.Color = false
	}
	if verbose {
		c.Log.Level = "debug"
	}
	cfg = c
	ui.Configure(cfg.UI.Color, cfg.UI.Emoji)

	sessionID = logging.NewSessionID()
	logger, err = logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Writer:  cmd.ErrOrStderr(),
		Session: sessionID,
	})
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "path", path, "api", cfg.API.BaseURL)
	return nil
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		ui.Bad.Fprintf(os.Stderr, "ontoscope: %v\n", err)
	}
	return err
}
