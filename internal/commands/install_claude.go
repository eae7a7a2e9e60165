package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"composermcp/internal/installer"
	"composermcp/internal/ui"

	"github.com/spf13/cobra"
)

type installClaudeOptions struct {
	output   string
	name     string
	manifest string
}

func (a *app) newInstallClaudeCmd() *cobra.Command {
	opts := &installClaudeOptions{}

	cmd := &cobra.Command{
		Use:   "install-claude",
		Short: "Register the MCP server with Claude Desktop",
		Long: `Adds this project's MCP server to the Claude Desktop configuration.

The configuration file is looked up in the platform's usual locations
unless --output names one. When none is found, the configuration to
merge by hand is printed instead.`,
		GroupID: "setup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.name == "" {
				opts.name = a.cfg.Install.Name
			}
			return a.runInstallClaude(opts, installer.CurrentEnv())
		},
	}

	cmd.Flags().StringVar(&opts.output, "output", "", "Client configuration file to update (created if missing)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Server name in the configuration (default: package name from composer.json)")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "Path to composer.json (default: auto-detect)")
	return cmd
}

func (a *app) runInstallClaude(opts *installClaudeOptions, env installer.Env) error {
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
	a.logger.Info("Launcher resolved", "path", launcher, "name", name)

	target := opts.output
	if target == "" {
		path, searched, found := installer.FindClientConfig(env)
		if !found {
			return a.printFragment(out, name, launcher, searched)
		}
		target = path
	}

	report, err := installer.Register(target, name, launcher)
	if err != nil {
		return err
	}

	if report.Changed() {
		out.Success(fmt.Sprintf("Successfully added MCP server '%s' to Claude Desktop configuration.", name))
	} else {
		out.Success(fmt.Sprintf("MCP server '%s' is already registered with Claude Desktop.", name))
	}
	out.Comment("Configuration file: " + target)
	out.Newline()
	out.Markdown(nextSteps(env.GOOS))
	return nil
}

func (a *app) printFragment(out *ui.Printer, name, launcher string, searched []string) error {
	fragment, err := installer.Fragment(name, launcher)
	if err != nil {
		return err
	}

	out.Warning("Could not find the Claude configuration file.")
	if len(searched) > 0 {
		out.Text("Searched:")
		out.List(searched)
	}
	out.Newline()
	out.Text("Please manually merge these lines with your Claude configuration file:")
	out.Newline()
	out.Block(fragment, 0)
	return nil
}

func nextSteps(goos string) string {
	var sb strings.Builder
	sb.WriteString(`## Next steps

To use this configuration with Claude Desktop:

1. Restart Claude Desktop completely
2. After restarting, you should see a slider icon in the bottom left corner of the input box
3. Click on the slider icon to see the available tools

If the server isn't being picked up by Claude Desktop:

1. Make sure Claude Desktop is on the latest version
2. Check the configuration file syntax
`)
	if dir := installer.LogDirectory(goos); dir != "" {
		fmt.Fprintf(&sb, "3. Look at the logs in `%s`\n", dir)
	}
	return sb.String()
}
