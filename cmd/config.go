package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/ontoscope/internal/config"
	"github.com/msalah0e/ontoscope/internal/ui"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
		Long: `Inspect the configuration file.

  ontoscope config show    # Effective settings, env and flags applied
  ontoscope config path    # Where the file lives
  ontoscope config init    # Write the defaults if no file exists

A ` + config.ProjectFile + ` file in the working directory or a parent
overrides the user file. ONTOSCOPE_API_URL and ONTOSCOPE_LOG_LEVEL
override both.`,
	}

	cmd.AddCommand(configShowCmd(), configPathCmd(), configInitCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path := cfgPath
			if path == "" {
				path = config.Path()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		},
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if cfgPath != "" {
				if err := config.SaveTo(cfgPath, config.Default()); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Fprintf(w, "  %s Wrote %s\n", ui.StatusIcon(true), cfgPath)
				return nil
			}

			created, err := config.EnsureExists()
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if !created {
				fmt.Fprintf(w, "  %s %s already exists\n", ui.WarnIcon(), config.Path())
				return nil
			}
			fmt.Fprintf(w, "  %s Wrote %s\n", ui.StatusIcon(true), config.Path())
			return nil
		},
	}
}
