package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"composermcp/pkg/fileops"

	"github.com/adrg/xdg"
)

// ErrLauncherNotFound means no candidate launcher resolved to a real file.
var ErrLauncherNotFound = errors.New("could not find mcp-server-start launcher")

// ClientConfigFile is the desktop client's server-registration file name.
const ClientConfigFile = "claude_desktop_config.json"

// LauncherName is the launcher executable registered with the desktop client.
const LauncherName = "mcp-server-start"

// Env is the slice of the environment path discovery depends on.
type Env struct {
	GOOS          string
	Home          string
	AppData       string
	XDGConfigHome string
}

// CurrentEnv captures the running process's environment.
func CurrentEnv() Env {
	return Env{
		GOOS:          runtime.GOOS,
		Home:          homeDirectory(),
		AppData:       os.Getenv("APPDATA"),
		XDGConfigHome: xdg.ConfigHome,
	}
}

// homeDirectory resolves HOME, then USERPROFILE, then the working directory.
func homeDirectory() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if home := os.Getenv("USERPROFILE"); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// ClientConfigCandidates lists, in probe order, where the desktop client keeps
// its configuration on env's platform. Unrecognised platforms yield nothing.
func ClientConfigCandidates(env Env) []string {
	var candidates []string

	switch env.GOOS {
	case "darwin":
		candidates = append(candidates,
			filepath.Join(env.Home, "Library", "Application Support", "Claude", ClientConfigFile),
			filepath.Join(env.Home, ".config", "Claude", ClientConfigFile),
		)
	case "windows":
		if env.AppData != "" {
			// Joined by hand so the path stays a Windows path on any host.
			candidates = append(candidates, strings.TrimRight(env.AppData, `\`)+`\Claude\`+ClientConfigFile)
		}
	case "linux":
		primary := filepath.Join(env.Home, ".config", "Claude", ClientConfigFile)
		candidates = append(candidates, primary)
		if env.XDGConfigHome != "" {
			if alt := filepath.Join(env.XDGConfigHome, "Claude", ClientConfigFile); alt != primary {
				candidates = append(candidates, alt)
			}
		}
	}

	return candidates
}

// FindClientConfig returns the first existing candidate. When none exists it
// returns found=false together with every location it searched.
func FindClientConfig(env Env) (path string, searched []string, found bool) {
	searched = ClientConfigCandidates(env)
	for _, candidate := range searched {
		if fileops.FileExists(candidate) {
			return candidate, searched, true
		}
	}
	return "", searched, false
}

// LauncherCandidates lists where the launcher may live: next to the running
// binary, then in the project's Composer bin directories.
func LauncherCandidates(exeDir, projectDir string) []string {
	name := LauncherName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	var candidates []string
	if exeDir != "" {
		candidates = append(candidates, filepath.Join(exeDir, name))
	}
	if projectDir != "" {
		candidates = append(candidates,
			filepath.Join(projectDir, "vendor", "bin", LauncherName),
			filepath.Join(projectDir, "bin", LauncherName),
		)
	}
	return candidates
}

// FindLauncher returns the real path of the first candidate that resolves to
// a regular file.
func FindLauncher(candidates []string) (string, error) {
	for _, candidate := range candidates {
		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(resolved)
		if err != nil {
			continue
		}
		if fileops.FileExists(abs) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w (searched: %s)", ErrLauncherNotFound, strings.Join(candidates, ", "))
}

// LogDirectory is where the desktop client writes its logs on goos, or "".
func LogDirectory(goos string) string {
	switch goos {
	case "darwin":
		return "~/Library/Logs/Claude"
	case "windows":
		return `%APPDATA%\Claude\logs`
	}
	return ""
}
