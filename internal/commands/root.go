// Package commands implements the composer-scripts-mcp command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"composermcp/internal/config"
	"composermcp/internal/logging"
	"composermcp/internal/project"
	"composermcp/internal/ui"

	"github.com/spf13/cobra"
)

// Version is reported by --version and during the MCP handshake.
var version = "1.0.0"

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v string) {
	if v != "" {
		version = v
	}
}

// app carries what every subcommand shares. It is built once per invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *logging.AppLogger
	exeDir string

	verbose    bool
	configPath string
	cfg        *config.Config
}

// exitCodeError ends the process with code after output has been written.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the command line with args and returns the process exit code.
func Execute(args []string) int {
	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logging.GetDefault(),
		exeDir: project.ExecutableDir(),
	}
	return a.execute(context.Background(), args)
}

// ExecuteArgs runs the command line against the given streams. Logs go to
// stderr.
func ExecuteArgs(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logging.NewWriterLogger(stderr),
		exeDir: project.ExecutableDir(),
	}
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	ui.NewPrinter(a.stderr).Error(err.Error())
	return 1
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "composer-scripts-mcp",
		Short: "Expose a project's Composer scripts to AI assistants over MCP",
		Long: `composer-scripts-mcp reads the scripts section of a project's composer.json
and serves them as MCP tools: composer_list shows what is defined and
composer_run executes a script in the project directory.

It also registers itself with Claude Desktop and keeps the launcher
scripts in composer.json up to date.`,
		Example: `  composer-scripts-mcp start-server                 # Serve over stdio
  composer-scripts-mcp start-server --http          # Serve over HTTP on 127.0.0.1:8088
  composer-scripts-mcp install-claude               # Register with Claude Desktop
  composer-scripts-mcp uninstall-claude             # Remove the registration again
  composer-scripts-mcp run test --filter=Unit       # Run a script from the terminal`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log at info level")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Settings file (default $XDG_CONFIG_HOME/composer-scripts-mcp/config.yaml)")
	root.SetVersionTemplate("composer-scripts-mcp {{.Version}}\n")
	root.CompletionOptions.HiddenDefaultCmd = true

	root.AddGroup(
		&cobra.Group{ID: "server", Title: "Server Commands:"},
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
		&cobra.Group{ID: "scripts", Title: "Script Commands:"},
	)

	root.AddCommand(
		a.newStartServerCmd(),
		a.newInstallClaudeCmd(),
		a.newUninstallClaudeCmd(),
		a.newInstallScriptsCmd(),
		a.newUninstallScriptsCmd(),
		a.newInitConfigCmd(),
		a.newListCmd(),
		a.newRunCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.logger.SetVerbose(a.verbose)

	// init-config writes the file, so a broken one must not block it.
	if cmd.Name() == "init-config" {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// manifestPath resolves the manifest from the flag, then the settings file,
// then the working directory, the project the binary is installed into and
// the git work tree.
func (a *app) manifestPath(flag string) (string, error) {
	explicit := flag
	if explicit == "" && a.cfg != nil {
		explicit = a.cfg.Manifest
	}
	return project.Locate(explicit, a.exeDir, a.logger)
}
