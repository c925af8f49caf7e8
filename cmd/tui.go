package cmd

import (
	"strings"

	"github.com/msalah0e/ontoscope/internal/logging"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/tui"
	"github.com/spf13/cobra"
)

func tuiCmd() *cobra.Command {
	var (
		ontologyID string
		elemType   string
	)

	cmd := &cobra.Command{
		Use:     "ui [term]",
		Aliases: []string{"tui", "explore"},
		Short:   "Interactive ontology explorer",
		Long: `Browse search results, element details and relation graphs in a
terminal interface. Results update as you type.

  tab        cycle between query, results and related terms
  enter      search, open a result or follow a term
  n / p      next or previous page of results
  i          toggle the source metadata of the result under the cursor
  mouse      hover a result to show its source metadata
  ctrl+c     quit

Logs go to the file set by log.file, since the explorer owns the terminal.

  ontoscope ui                 # Start empty
  ontoscope ui gene            # Start with a search
  ontoscope ui gene --type Concept`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseElementType(elemType)
			if err != nil {
				return err
			}

			fileLog, closer, err := logging.OpenFile(cfg.LogFile(), logging.Options{
				Level:   cfg.Log.Level,
				Session: sessionID,
			})
			if err != nil {
				return err
			}
			defer closer.Close()
			logger = fileLog

			client, err := newClient()
			if err != nil {
				return err
			}

			surf := tui.NewSurface()
			sess := newSession(cmd.Context(), client, surf)
			defer sess.Close()
			sess.SetFilters(ontologyID, t)

			logger.Info("explorer started", "api", cfg.API.BaseURL)
			err = tui.Run(sess, surf, tui.Options{
				InitialQuery: strings.Join(args, " "),
				Emoji:        cfg.UI.Emoji,
			})
			logger.Info("explorer stopped", "duration", sess.Duration().String())
			return err
		},
	}

	cmd.Flags().StringVar(&ontologyID, "ontology", "", "Only search this ontology id")
	cmd.Flags().StringVar(&elemType, "type", "", "Only this element type (Concept, Relation, Instance)")
	_ = cmd.RegisterFlagCompletionFunc("ontology", ontologyCompletionFunc)
	_ = cmd.RegisterFlagCompletionFunc("type", typeCompletionFunc)
	return cmd
}
