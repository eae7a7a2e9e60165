package commands

import (
	"fmt"

	"composermcp/internal/hooks"
	"composermcp/internal/reconcile"
	"composermcp/internal/ui"

	"github.com/spf13/cobra"
)

func (a *app) newInstallScriptsCmd() *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "install-scripts",
		Short: "Add the launcher scripts to composer.json",
		Long: `Adds mcp:server:start and mcp:server:install to the scripts section of
composer.json and removes the older start, start:http and install-claude
entries when they are unchanged.

Hook it into composer.json so it runs after every install and update:

  "post-install-cmd": ["vendor/bin/composer-scripts-mcp install-scripts"],
  "post-update-cmd": ["vendor/bin/composer-scripts-mcp install-scripts"]`,
		GroupID: "setup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.manifestPath(manifest)
			if err != nil {
				return err
			}
			report, err := hooks.InstallScripts(path, a.logger)
			if err != nil {
				return err
			}
			printReport(ui.NewPrinter(a.stdout), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "Path to composer.json (default: auto-detect)")
	return cmd
}

func (a *app) newUninstallScriptsCmd() *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "uninstall-scripts",
		Short: "Remove the launcher scripts from composer.json",
		Long: `Removes every script entry this package added, current or legacy, as long
as it still has the value it was installed with. Edited entries are kept.`,
		GroupID: "setup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.manifestPath(manifest)
			if err != nil {
				return err
			}
			report, err := hooks.UninstallScripts(path, a.logger)
			if err != nil {
				return err
			}
			printReport(ui.NewPrinter(a.stdout), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "Path to composer.json (default: auto-detect)")
	return cmd
}

func printReport(out *ui.Printer, report *reconcile.Report) {
	if !report.Changed() {
		out.Comment(fmt.Sprintf("%s is up to date.", report.Path))
		return
	}

	for _, group := range []struct {
		action reconcile.Action
		marker string
	}{
		{reconcile.ActionRemoved, "-"},
		{reconcile.ActionAdded, "+"},
		{reconcile.ActionUpdated, "~"},
	} {
		for _, key := range report.Keys(group.action) {
			out.Info(fmt.Sprintf("%s %s", group.marker, key))
		}
	}
	out.Success(fmt.Sprintf("Updated %s", report.Path))
}
