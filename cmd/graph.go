package cmd

import (
	"github.com/msalah0e/ontoscope/internal/surface"
	"github.com/spf13/cobra"
)

func graphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph <element>",
		Short: "Print the relation graph of an element",
		Long: `Print the graph of an element and its direct relations, for viewing or
for piping into other tools.

  ontoscope graph gene                        # Tree in the terminal
  ontoscope graph gene --format dot | dot -Tsvg > gene.svg
  ontoscope graph gene --format mermaid       # Paste into a Markdown doc
  ontoscope graph gene --format json          # Nodes and edges`,
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
			out.Detail = false

			sess := newSession(cmd.Context(), client, out)
			defer sess.Close()

			sess.Load(args[0])
			sess.Wait()
			return out.err()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tree", "Output format: tree, dot, mermaid, json")
	return cmd
}
