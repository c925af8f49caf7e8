package cmd

import (
	"context"
	"time"

	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts.
func completionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate completion scripts for your shell.

  # Bash (add to ~/.bashrc)
  eval "$(ontoscope completion bash)"

  # Zsh (add to ~/.zshrc)
  eval "$(ontoscope completion zsh)"

  # Fish
  ontoscope completion fish | source

  # PowerShell
  ontoscope completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				_ = rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				_ = rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				_ = rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				_ = rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}

	return cmd
}

// ontologyCompletionFunc completes ontology ids from the server. It stays
// silent when the server is unreachable.
func ontologyCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if cfg == nil {
		if err := setup(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	}
	client, err := newClient()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	list, err := client.Ontologies(ctx, false, 1)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, o := range list {
		completions = append(completions, o.ID+"\t"+o.Name)
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// typeCompletionFunc completes element type names.
func typeCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	completions := make([]string, len(model.ElementTypes))
	for i, t := range model.ElementTypes {
		completions[i] = string(t)
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
