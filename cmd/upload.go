package cmd

import (
	"fmt"

	"github.com/msalah0e/ontoscope/internal/api"
	"github.com/msalah0e/ontoscope/internal/ui"
	"github.com/spf13/cobra"
)

func uploadCmd() *cobra.Command {
	var req api.UploadRequest

	cmd := &cobra.Command{
		Use:     "upload",
		Aliases: []string{"load"},
		Short:   "Load an ontology into the server",
		Long: `Upload an ontology file with its metadata file, and optionally the
context document it was extracted from. The ontology list is printed
afterwards.

  ontoscope upload --ontology genes.owl --metadata genes.json
  ontoscope upload --ontology genes.owl --metadata genes.json --context genes.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			res, err := client.Upload(cmd.Context(), req)
			if err != nil {
				return userErr("upload", err)
			}

			w := cmd.OutOrStdout()
			msg := res.Message
			if msg == "" {
				msg = "Ontology loaded."
			}
			fmt.Fprintf(w, "  %s %s\n\n", ui.StatusIcon(true), ui.Good.Sprint(msg))
			return listAfter(cmd.Context(), w, client)
		},
	}

	cmd.Flags().StringVar(&req.OntologyFile, "ontology", "", "Ontology file (required)")
	cmd.Flags().StringVar(&req.MetadataFile, "metadata", "", "Metadata file (required)")
	cmd.Flags().StringVar(&req.ContextFile, "context", "", "Context document")
	return cmd
}
