package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/msalah0e/ontoscope/internal/api"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/ui"
	"github.com/spf13/cobra"
)

func ontologiesCmd() *cobra.Command {
	var (
		withMeta bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "ontologies",
		Aliases: []string{"ls", "list"},
		Short:   "List loaded ontologies",
		Long: `List the ontologies loaded on the server.

  ontoscope ontologies               # Ids and names
  ontoscope ontologies --metadata    # Grouped by the file they came from
  ontoscope ontologies --json        # Machine-readable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			list, err := client.Ontologies(cmd.Context(), withMeta, cfg.Search.Concurrency)
			if err != nil {
				return userErr("ontologies", err)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			printOntologies(cmd.OutOrStdout(), list, withMeta)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withMeta, "metadata", "m", false, "Fetch provenance and group by source file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printOntologies(w io.Writer, list []model.Ontology, grouped bool) {
	ui.FBanner(w, fmt.Sprintf("%d ontolog%s loaded", len(list), plural(len(list), "y", "ies")))
	if len(list) == 0 {
		fmt.Fprintln(w, "  Nothing loaded yet. Try `ontoscope upload --ontology FILE --metadata FILE`.")
		return
	}

	if !grouped {
		rows := make([][]string, len(list))
		for i, o := range list {
			rows[i] = []string{o.ID, o.Name}
		}
		ui.FTable(w, []string{"ID", "NAME"}, rows)
		return
	}

	files, groups := api.GroupBySource(list)
	for _, file := range files {
		fmt.Fprintf(w, "  %s\n", ui.Brand.Sprint(file))
		var rows [][]string
		for _, o := range groups[file] {
			rows = append(rows, []string{o.ID, o.Name, o.Source.OntologyFile, ui.Truncate(o.Source.SHA256Hash, 12)})
		}
		ui.FTable(w, []string{"ID", "NAME", "ONTOLOGY FILE", "SHA-256"}, rows)
		fmt.Fprintln(w)
	}

	var orphans [][]string
	for _, o := range list {
		if o.Source == nil || o.Source.SourceFile == "" {
			orphans = append(orphans, []string{o.ID, o.Name})
		}
	}
	if len(orphans) > 0 {
		fmt.Fprintf(w, "  %s\n", ui.Subtle.Sprint("no provenance"))
		ui.FTable(w, []string{"ID", "NAME"}, orphans)
	}
}

// listAfter re-fetches the ontology list, as after an upload.
func listAfter(ctx context.Context, w io.Writer, client *api.Client) error {
	list, err := client.Ontologies(ctx, true, cfg.Search.Concurrency)
	if err != nil {
		return userErr("ontologies", err)
	}
	printOntologies(w, list, true)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
