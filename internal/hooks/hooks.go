// Package hooks keeps the host project's composer.json in step with the
// launcher scripts this package ships. It replaces a Composer plugin: run
// InstallScripts from a post-install-cmd / post-update-cmd hook and
// UninstallScripts before removing the package.
package hooks

import (
	"fmt"
	"os"

	"composermcp/internal/logging"
	"composermcp/internal/reconcile"
	"composermcp/internal/scripts"
	"composermcp/pkg/fileops"
)

// ScriptsSection is the composer.json member holding scripts.
const ScriptsSection = "scripts"

// CurrentScripts are the script signatures added since 1.0.2.
var CurrentScripts = []reconcile.Entry{
	{Key: "mcp:server:start", Value: "vendor/bin/mcp-server-start"},
	{Key: "mcp:server:install", Value: "vendor/bin/mcp-server-install"},
}

// LegacyScripts are the 1.0.0 signatures, removed when still untouched.
var LegacyScripts = []reconcile.Entry{
	{Key: "start", Value: "vendor/bin/start-server"},
	{Key: "start:http", Value: "vendor/bin/start-server --http"},
	{Key: "install-claude", Value: "vendor/bin/install-claude"},
}

// ScriptsPlan is the reconciliation plan for the scripts section.
func ScriptsPlan() reconcile.Plan {
	return reconcile.Plan{
		Section: ScriptsSection,
		Current: CurrentScripts,
		Legacy:  LegacyScripts,
	}
}

// InstallScripts adds the current script signatures to the manifest and drops
// superseded ones.
func InstallScripts(manifestPath string, logger *logging.AppLogger) (*reconcile.Report, error) {
	if err := requireManifest(manifestPath); err != nil {
		return nil, err
	}

	report, err := reconcile.Install(manifestPath, ScriptsPlan())
	if err != nil {
		return nil, err
	}
	logReport(logger, "install", report)
	return report, nil
}

// UninstallScripts removes every script signature this package still owns.
func UninstallScripts(manifestPath string, logger *logging.AppLogger) (*reconcile.Report, error) {
	if err := requireManifest(manifestPath); err != nil {
		return nil, err
	}

	report, err := reconcile.Uninstall(manifestPath, ScriptsPlan())
	if err != nil {
		return nil, err
	}
	logReport(logger, "uninstall", report)
	return report, nil
}

func requireManifest(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", scripts.ErrManifestNotFound, path)
	}
	if err := fileops.ValidateFileAccess(path, true); err != nil {
		return fmt.Errorf("cannot update manifest %s: %w", path, err)
	}
	return nil
}

func logReport(logger *logging.AppLogger, operation string, report *reconcile.Report) {
	for _, change := range report.Changes {
		logger.Info("Script signature "+string(change.Action), "operation", operation, "script", change.Key)
	}
	logger.Info("Scripts reconciled", "operation", operation, "manifest", report.Path, "changed", report.Changed())
}
