package commands

import (
	"fmt"
	"path/filepath"

	"composermcp/internal/installer"
	"composermcp/internal/ui"

	"github.com/spf13/cobra"
)

func (a *app) newUninstallClaudeCmd() *cobra.Command {
	opts := &installClaudeOptions{}

	cmd := &cobra.Command{
		Use:   "uninstall-claude",
		Short: "Remove the MCP server from Claude Desktop",
		Long: `Removes this project's MCP server from the Claude Desktop configuration.

The entry is only removed while it still points at this project's
launcher. Entries edited by hand are kept.`,
		GroupID: "setup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.name == "" {
				opts.name = a.cfg.Install.Name
			}
			return a.runUninstallClaude(opts, installer.CurrentEnv())
		},
	}

	cmd.Flags().StringVar(&opts.output, "output", "", "Client configuration file to update")
	cmd.Flags().StringVar(&opts.name, "name", "", "Server name in the configuration (default: package name from composer.json)")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "Path to composer.json (default: auto-detect)")
	return cmd
}

func (a *app) runUninstallClaude(opts *installClaudeOptions, env installer.Env) error {
	out := ui.NewPrinter(a.stdout)

	manifestPath, err := a.manifestPath(opts.manifest)
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		name = installer.ProjectName(manifestPath)
	}

	launcher, err := installer.FindLauncher(
		installer.LauncherCandidates(a.exeDir, filepath.Dir(manifestPath)),
	)
	if err != nil {
		return fmt.Errorf("%w. Please ensure the package is installed correctly", err)
	}

	target := opts.output
	if target == "" {
		path, _, found := installer.FindClientConfig(env)
		if !found {
			out.Comment("No Claude configuration file found. Nothing to remove.")
			return nil
		}
		target = path
	}

	report, err := installer.Unregister(target, name, launcher)
	if err != nil {
		return err
	}

	if report.Changed() {
		out.Success(fmt.Sprintf("Removed MCP server '%s' from Claude Desktop configuration.", name))
	} else {
		out.Comment(fmt.Sprintf("MCP server '%s' is not registered with this launcher.", name))
	}
	out.Comment("Configuration file: " + target)
	return nil
}
