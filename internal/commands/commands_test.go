package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"composermcp/internal/installer"
	"composermcp/internal/logging"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes the command line with an absent settings file unless args
// name one.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer

	full := append([]string{"--config=" + filepath.Join(t.TempDir(), "absent.yaml")}, args...)
	code := ExecuteArgs(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// isolateHome points HOME and the XDG config dir at empty temp dirs.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	xdg.Reload()
	return home
}

// newProject writes composer.json and, optionally, the vendor launcher.
func newProject(t *testing.T, manifest string, withLauncher bool) (manifestPath, launcher string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("scripts run through sh")
	}

	dir := t.TempDir()
	manifestPath = filepath.Join(dir, "composer.json")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o644))

	if withLauncher {
		launcher = filepath.Join(dir, "vendor", "bin", installer.LauncherName)
		require.NoError(t, os.MkdirAll(filepath.Dir(launcher), 0o755))
		require.NoError(t, os.WriteFile(launcher, []byte("#!/bin/sh\n"), 0o755))
		resolved, err := filepath.EvalSymlinks(launcher)
		require.NoError(t, err)
		launcher = resolved
	}
	return manifestPath, launcher
}

const projectManifest = `{
    "name": "acme/app",
    "scripts": {
        "test": "echo testing",
        "lint": ["echo one", "echo two"],
        "fail": "exit 4"
    }
}`

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "--version")

	assert.Equal(t, 0, res.code)
	assert.Equal(t, "composer-scripts-mcp "+version+"\n", res.stdout)
}

func TestUnknownCommand(t *testing.T) {
	res := runCLI(t, "", "deploy")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown command")
}

func TestList(t *testing.T) {
	manifest, _ := newProject(t, projectManifest, false)

	res := runCLI(t, "", "list", "--manifest", manifest)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "test  echo testing\nlint  echo one && echo two\nfail  exit 4\n", res.stdout)
}

func TestList_JSON(t *testing.T) {
	manifest, _ := newProject(t, projectManifest, false)

	res := runCLI(t, "", "list", "--json", "--manifest", manifest)

	require.Equal(t, 0, res.code, res.stderr)
	var listed struct {
		Scripts []map[string]string `json:"scripts"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &listed))
	assert.Equal(t, 3, listed.Count)
	assert.Equal(t, "lint", listed.Scripts[1]["name"])
}

func TestList_MissingManifest(t *testing.T) {
	res := runCLI(t, "", "list", "--manifest", filepath.Join(t.TempDir(), "composer.json"))

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "composer manifest not found")
}

func TestList_ManifestFromSettings(t *testing.T) {
	manifest, _ := newProject(t, projectManifest, false)
	settings := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("manifest: "+manifest+"\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := ExecuteArgs(context.Background(), []string{"--config", settings, "list"}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "echo testing")
}

func TestRun(t *testing.T) {
	manifest, _ := newProject(t, projectManifest, false)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{
			name:    "success",
			args:    []string{"run", "--manifest", manifest, "test"},
			wantOut: "testing\n",
		},
		{
			name:    "arguments pass through",
			args:    []string{"run", "--manifest", manifest, "test", "--filter=Unit", "a b"},
			wantOut: "testing --filter=Unit a b\n",
		},
		{
			name:    "leading double dash dropped",
			args:    []string{"run", "--manifest", manifest, "test", "--", "-v"},
			wantOut: "testing -v\n",
		},
		{
			name:    "multi-step",
			args:    []string{"run", "--manifest", manifest, "lint"},
			wantOut: "one\ntwo\n",
		},
		{
			name:     "exit code propagates",
			args:     []string{"run", "--manifest", manifest, "fail"},
			wantCode: 4,
			wantErr:  "exited with code 4",
		},
		{
			name:     "unknown script",
			args:     []string{"run", "--manifest", manifest, "deploy"},
			wantCode: 1,
			wantErr:  "script not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)

			assert.Equal(t, tt.wantCode, res.code, res.stderr)
			assert.Equal(t, tt.wantOut, res.stdout)
			assert.Contains(t, res.stderr, tt.wantErr)
		})
	}
}

func TestInstallAndUninstallScripts(t *testing.T) {
	manifest, _ := newProject(t, `{"name": "acme/app", "scripts": {"start": "vendor/bin/start-server"}}`, false)

	res := runCLI(t, "", "install-scripts", "--manifest", manifest)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "+ mcp:server:start")
	assert.Contains(t, res.stdout, "- start")

	res = runCLI(t, "", "install-scripts", "--manifest", manifest)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "up to date")

	res = runCLI(t, "", "uninstall-scripts", "--manifest", manifest)
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "acme/app", "scripts": {}}`, string(data))
}

func TestInstallScripts_MissingManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composer.json")

	res := runCLI(t, "", "install-scripts", "--manifest", path)

	assert.Equal(t, 1, res.code)
	assert.NoFileExists(t, path)
}

func TestInstallClaude_PrintsFragmentWhenNoConfigFound(t *testing.T) {
	isolateHome(t)
	manifest, launcher := newProject(t, projectManifest, true)

	res := runCLI(t, "", "install-claude", "--manifest", manifest)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Could not find the Claude configuration file")
	assert.Contains(t, res.stdout, "Please manually merge these lines")

	start := strings.Index(res.stdout, "{")
	require.GreaterOrEqual(t, start, 0)
	var fragment struct {
		MCPServers map[string]installer.ServerRegistration `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout[start:]), &fragment))
	assert.Equal(t, installer.NewRegistration(launcher), fragment.MCPServers["app"])
}

func TestInstallClaude_OutputCreatesFile(t *testing.T) {
	isolateHome(t)
	manifest, launcher := newProject(t, projectManifest, true)
	output := filepath.Join(t.TempDir(), "claude", installer.ClientConfigFile)

	res := runCLI(t, "", "install-claude", "--manifest", manifest, "--output", output, "--name", "tools")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Successfully added MCP server 'tools'")
	assert.Contains(t, res.stdout, "Restart Claude Desktop completely")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var cfg struct {
		MCPServers map[string]installer.ServerRegistration `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, installer.NewRegistration(launcher), cfg.MCPServers["tools"])

	again := runCLI(t, "", "install-claude", "--manifest", manifest, "--output", output, "--name", "tools")
	require.Equal(t, 0, again.code, again.stderr)
	assert.Contains(t, again.stdout, "already registered")
}

func TestInstallClaude_UpdatesDiscoveredConfig(t *testing.T) {
	home := isolateHome(t)
	manifest, launcher := newProject(t, projectManifest, true)

	clientConfig := filepath.Join(home, ".config", "Claude", installer.ClientConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(clientConfig), 0o755))
	require.NoError(t, os.WriteFile(clientConfig, []byte(`{"theme": "dark"}`), 0o644))

	res := runCLI(t, "", "install-claude", "--manifest", manifest)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, clientConfig)

	data, err := os.ReadFile(clientConfig)
	require.NoError(t, err)
	var cfg struct {
		Theme      string                                  `json:"theme"`
		MCPServers map[string]installer.ServerRegistration `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, installer.NewRegistration(launcher), cfg.MCPServers["app"])
}

func TestInstallClaude_LauncherMissing(t *testing.T) {
	isolateHome(t)
	manifest, _ := newProject(t, projectManifest, false)

	res := runCLI(t, "", "install-claude", "--manifest", manifest)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "could not find mcp-server-start launcher")
	assert.Empty(t, res.stdout)
}

func TestInstallClaude_InvalidConfig(t *testing.T) {
	isolateHome(t)
	manifest, _ := newProject(t, projectManifest, true)
	output := filepath.Join(t.TempDir(), installer.ClientConfigFile)
	require.NoError(t, os.WriteFile(output, []byte(`{"mcpServers": `), 0o644))

	res := runCLI(t, "", "install-claude", "--manifest", manifest, "--output", output)

	assert.Equal(t, 1, res.code)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, `{"mcpServers": `, string(data))
}

func TestUninstallClaude(t *testing.T) {
	isolateHome(t)
	manifest, _ := newProject(t, projectManifest, true)
	output := filepath.Join(t.TempDir(), installer.ClientConfigFile)
	require.NoError(t, os.WriteFile(output, []byte(`{"mcpServers": {"other": {"command": "node", "args": []}}}`), 0o644))

	res := runCLI(t, "", "install-claude", "--manifest", manifest, "--output", output)
	require.Equal(t, 0, res.code, res.stderr)

	res = runCLI(t, "", "uninstall-claude", "--manifest", manifest, "--output", output)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Removed MCP server 'app'")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var cfg struct {
		MCPServers map[string]installer.ServerRegistration `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.NotContains(t, cfg.MCPServers, "app")
	assert.Contains(t, cfg.MCPServers, "other")

	res = runCLI(t, "", "uninstall-claude", "--manifest", manifest, "--output", output)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "is not registered")
}

func TestUninstallClaude_KeepsRepointedEntry(t *testing.T) {
	isolateHome(t)
	manifest, _ := newProject(t, projectManifest, true)
	output := filepath.Join(t.TempDir(), installer.ClientConfigFile)
	original := `{"mcpServers": {"app": {"command": "/elsewhere/mcp-server-start", "args": []}}}`
	require.NoError(t, os.WriteFile(output, []byte(original), 0o644))

	res := runCLI(t, "", "uninstall-claude", "--manifest", manifest, "--output", output)

	require.Equal(t, 0, res.code, res.stderr)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestUninstallClaude_NoConfigFound(t *testing.T) {
	isolateHome(t)
	manifest, _ := newProject(t, projectManifest, true)

	res := runCLI(t, "", "uninstall-claude", "--manifest", manifest)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Nothing to remove")
}

func TestNextSteps(t *testing.T) {
	assert.Contains(t, nextSteps("darwin"), "~/Library/Logs/Claude")
	assert.Contains(t, nextSteps("windows"), `%APPDATA%\Claude\logs`)
	assert.NotContains(t, nextSteps("linux"), "Look at the logs")
}

func TestStartServer_Stdio(t *testing.T) {
	manifest, _ := newProject(t, projectManifest, false)
	stdin := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n"

	res := runCLI(t, stdin, "start-server", "--manifest", manifest)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"composer_run"`)
	assert.Contains(t, res.stdout, `"composer_list"`)
}

func TestStartServer_ManifestBesideInstalledLauncher(t *testing.T) {
	manifest, launcher := newProject(t, projectManifest, true)
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	a := &app{
		stdin:  strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"composer_list","arguments":{}}}` + "\n"),
		stdout: &stdout,
		stderr: &stderr,
		logger: logging.NewWriterLogger(&stderr),
		exeDir: filepath.Dir(launcher),
	}
	code := a.execute(context.Background(), []string{"--config=" + filepath.Join(t.TempDir(), "absent.yaml"), "start-server"})

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "echo testing")
	assert.NotContains(t, stderr.String(), "composer manifest not found")
	assert.FileExists(t, manifest)
}

func TestStartServer_MissingManifest(t *testing.T) {
	res := runCLI(t, "", "start-server", "--manifest", filepath.Join(t.TempDir(), "composer.json"))

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "composer manifest not found")
	assert.Empty(t, res.stdout)
}

func TestStartServer_HTTPAddressInUse(t *testing.T) {
	manifest, _ := newProject(t, projectManifest, false)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	res := runCLI(t, "", "start-server", "--http", "--host", "127.0.0.1", "--port", port, "--manifest", manifest)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "failed to listen")
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings", "config.yaml")

	var stdout, stderr bytes.Buffer
	code := ExecuteArgs(context.Background(), []string{"--config", path, "init-config"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, path)
	assert.Contains(t, stdout.String(), path)

	stderr.Reset()
	code = ExecuteArgs(context.Background(), []string{"--config", path, "init-config"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "already exists")

	code = ExecuteArgs(context.Background(), []string{"--config", path, "init-config", "--force"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 0, code)
}

func TestBrokenSettingsFile(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("server: [unclosed"), 0o600))

	var stdout, stderr bytes.Buffer
	code := ExecuteArgs(context.Background(), []string{"--config", settings, "list"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "failed to parse config file")
}
