// Package installer registers the MCP server with a desktop AI client by
// reconciling the client's mcpServers configuration.
package installer

import (
	"encoding/json"
	"os"
	"strings"

	"composermcp/internal/reconcile"
)

// ServersSection is the client config member holding server registrations.
const ServersSection = "mcpServers"

// DefaultServerName is used when the manifest carries no package name.
const DefaultServerName = "composer"

// ServerRegistration is one mcpServers entry.
type ServerRegistration struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// NewRegistration builds the entry pointing the client at launcher.
func NewRegistration(launcher string) ServerRegistration {
	return ServerRegistration{Command: launcher, Args: []string{}}
}

// ProjectName derives the server name from the manifest's package name
// ("vendor/package" yields "package"). Any read or parse problem falls back
// to DefaultServerName.
func ProjectName(manifestPath string) string {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return DefaultServerName
	}

	var manifest struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil || manifest.Name == "" {
		return DefaultServerName
	}

	parts := strings.Split(manifest.Name, "/")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return DefaultServerName
}

// RegistrationPlan is the reconciliation plan registering name. The entry is
// owned: re-running the installer repoints it at the current launcher.
func RegistrationPlan(name, launcher string) reconcile.Plan {
	return reconcile.Plan{
		Section: ServersSection,
		Current: []reconcile.Entry{
			{Key: name, Value: NewRegistration(launcher), Owned: true},
		},
	}
}

// Register adds or updates name in the client config at path, creating the
// file when absent.
func Register(path, name, launcher string) (*reconcile.Report, error) {
	return reconcile.Install(path, RegistrationPlan(name, launcher))
}

// Unregister removes name from the client config at path if it still points
// at launcher.
func Unregister(path, name, launcher string) (*reconcile.Report, error) {
	return reconcile.Uninstall(path, RegistrationPlan(name, launcher))
}

// Fragment renders a ready-to-paste client configuration registering name.
func Fragment(name, launcher string) (string, error) {
	doc := map[string]map[string]ServerRegistration{
		ServersSection: {name: NewRegistration(launcher)},
	}

	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", reconcile.Indent)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
