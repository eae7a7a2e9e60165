package commands

import (
	"fmt"

	"composermcp/internal/config"
	"composermcp/internal/ui"
	"composermcp/pkg/fileops"

	"github.com/spf13/cobra"
)

func (a *app) newInitConfigCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "init-config",
		Short:   "Write a settings file with the defaults",
		GroupID: "setup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			path = fileops.ExpandPath(path)

			if fileops.FileExists(path) && !force {
				return fmt.Errorf("settings file already exists: %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			ui.NewPrinter(a.stdout).Success("Wrote " + path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")
	return cmd
}
