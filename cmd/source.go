package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/msalah0e/ontoscope/internal/ui"
	"github.com/spf13/cobra"
)

func sourceCmd() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "source <path>",
		Short: "Open a source document in the server's viewer",
		Long: `Open the server's viewer for a source document, such as the Source file
shown in an element's metadata.

  ontoscope source docs/genes.txt           # Open in the browser
  ontoscope source docs/genes.txt --print   # Only print the URL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			target := client.ViewSourceURL(args[0])
			w := cmd.OutOrStdout()

			if printOnly {
				fmt.Fprintln(w, target)
				return nil
			}
			if err := openURL(target); err != nil {
				logger.Debug("opener failed", "error", err)
				fmt.Fprintf(w, "  %s\n", target)
				fmt.Fprintln(w, "  Open it in your browser to view the source")
				return nil
			}
			ui.Good.Fprintf(w, "  %s Opened %s\n", ui.StatusIcon(true), args[0])
			ui.Subtle.Fprintf(w, "  %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&printOnly, "print", "p", false, "Print the URL instead of opening it")
	return cmd
}

func openURL(target string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", target)
	case "linux":
		c = exec.Command("xdg-open", target)
	default:
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	}
	return c.Start()
}
