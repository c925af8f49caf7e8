package cmd

import (
	"fmt"

	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/surface"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	var (
		ontologyID string
		elemType   string
		page       int
		pick       int
		format     string
		contexts   int
	)

	cmd := &cobra.Command{
		Use:     "search <term>",
		Aliases: []string{"s", "find"},
		Short:   "Search ontology elements",
		Long: `Search ontology elements by name.

  ontoscope search gene                     # First page of matches
  ontoscope search gene --type Concept      # Only concepts
  ontoscope search gene --ontology go       # Only one ontology
  ontoscope search gene --page 2            # Next page
  ontoscope search gene --select 2          # Also open the second result`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseElementType(elemType)
			if err != nil {
				return err
			}
			gf, err := surface.ParseGraphFormat(format)
			if err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			out := newCLISurface(cmd)
			out.Graph = gf
			out.Detail = true
			out.Contexts = contexts
			out.once = true

			sess := newSession(cmd.Context(), client, out)
			defer sess.Close()

			sess.Search(model.Query{Text: args[0], OntologyID: ontologyID, Type: t, Page: page})
			sess.Wait()
			if err := out.err(); err != nil {
				return err
			}

			if pick > 0 {
				if err := sess.SelectIndex(pick - 1); err != nil {
					return err
				}
				sess.Wait()
			}
			return out.err()
		},
	}

	cmd.Flags().StringVar(&ontologyID, "ontology", "", "Only search this ontology id")
	cmd.Flags().StringVar(&elemType, "type", "", "Only this element type (Concept, Relation, Instance)")
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	cmd.Flags().IntVar(&pick, "select", 0, "Open the n-th result (1-based)")
	cmd.Flags().StringVar(&format, "graph", "tree", "Graph format for --select: tree, dot, mermaid, json, none")
	cmd.Flags().IntVar(&contexts, "contexts", 5, "Contexts shown for --select, 0 = all")
	_ = cmd.RegisterFlagCompletionFunc("ontology", ontologyCompletionFunc)
	_ = cmd.RegisterFlagCompletionFunc("type", typeCompletionFunc)
	return cmd
}
