package cmd

import (
	"github.com/msalah0e/ontoscope/internal/surface"
	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	var (
		format   string
		contexts int
	)

	cmd := &cobra.Command{
		Use:     "show <element>",
		Aliases: []string{"info", "detail"},
		Short:   "Show an element's detail, contexts and relations",
		Long: `Show one element: its type, description, the contexts in which it
occurs and the graph of its relations.

  ontoscope show gene                  # Detail and relation tree
  ontoscope show gene --contexts 0     # Every context
  ontoscope show gene --graph none     # Detail only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gf, err := surface.ParseGraphFormat(format)
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			out := newCLISurface(cmd)
			out.Graph = gf
			out.Detail = true
			out.Contexts = contexts

			sess := newSession(cmd.Context(), client, out)
			defer sess.Close()

			sess.Load(args[0])
			sess.Wait()
			return out.err()
		},
	}

	cmd.Flags().StringVar(&format, "graph", "tree", "Graph format: tree, dot, mermaid, json, none")
	cmd.Flags().IntVar(&contexts, "contexts", 5, "Contexts shown, 0 = all")
	return cmd
}
