package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"composermcp/internal/scripts"
	"composermcp/internal/ui"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func (a *app) newListCmd() *cobra.Command {
	var (
		manifest string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List the scripts in composer.json",
		GroupID: "scripts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := a.loadRegistry(manifest)
			if err != nil {
				return err
			}
			return a.printList(registry.List(), asJSON)
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "Path to composer.json (default: auto-detect)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the composer_list tool result")
	return cmd
}

func (a *app) printList(listed scripts.ListResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	}

	out := ui.NewPrinter(a.stdout)
	if listed.Count == 0 {
		out.Comment("No scripts defined.")
		return nil
	}

	width := 0
	for _, s := range listed.Scripts {
		width = max(width, lipgloss.Width(s.Name))
	}
	for _, s := range listed.Scripts {
		out.Info(fmt.Sprintf("%-*s  %s", width, s.Name, s.Command))
	}
	return nil
}

func (a *app) newRunCmd() *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Run a script from composer.json",
		Long: `Runs a script the way the composer_run tool does: in the manifest's
directory, with every extra argument shell-quoted and appended.

The command exits with the script's exit code.`,
		GroupID: "scripts",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.loadRegistry(manifest)
			if err != nil {
				return err
			}

			extra := args[1:]
			if len(extra) > 0 && extra[0] == "--" {
				extra = extra[1:]
			}

			result, err := registry.Run(cmd.Context(), args[0], extra)
			if err != nil {
				return err
			}
			return a.printRun(result)
		},
	}

	// Everything after the script name belongs to the script.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&manifest, "manifest", "", "Path to composer.json (default: auto-detect)")
	return cmd
}

func (a *app) printRun(result *scripts.RunResult) error {
	errOut := ui.NewPrinter(a.stderr)
	errOut.Comment("> " + result.Command)

	if len(result.Output) > 0 {
		fmt.Fprintln(a.stdout, strings.Join(result.Output, "\n"))
	}

	if !result.Success {
		errOut.Error(fmt.Sprintf("Script %s exited with code %d", result.Script, result.ReturnCode))
		code := result.ReturnCode
		if code <= 0 {
			code = 1
		}
		return &exitCodeError{code: code}
	}
	return nil
}

func (a *app) loadRegistry(manifest string) (*scripts.Registry, error) {
	path, err := a.manifestPath(manifest)
	if err != nil {
		return nil, err
	}
	return scripts.Load(path, a.logger)
}
