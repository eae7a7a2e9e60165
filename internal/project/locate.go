// Package project finds the composer.json the tools operate on.
package project

import (
	"errors"
	"os"
	"path/filepath"

	"composermcp/internal/logging"
	"composermcp/pkg/fileops"

	"github.com/go-git/go-git/v6"
)

// ManifestFile is the Composer manifest file name.
const ManifestFile = "composer.json"

// VendorDir is the Composer dependency directory name.
const VendorDir = "vendor"

// Locate resolves the manifest path. An explicit path always wins.
// Otherwise the working directory is tried, then the project the binary in
// exeDir is installed into, then the root of the enclosing git work tree.
// When nothing exists the working-directory path is returned so the caller
// reports a missing manifest against the place it looked first.
func Locate(explicit, exeDir string, logger *logging.AppLogger) (string, error) {
	if explicit != "" {
		return filepath.Abs(fileops.ExpandPath(explicit))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	local := filepath.Join(cwd, ManifestFile)
	if fileops.FileExists(local) {
		return local, nil
	}

	if installed, ok := InstalledManifest(exeDir); ok {
		logger.Debug("Manifest found relative to executable", "path", installed, "exe_dir", exeDir)
		return installed, nil
	}

	root, err := WorkTreeRoot(cwd)
	switch {
	case err == nil:
		candidate := filepath.Join(root, ManifestFile)
		if fileops.FileExists(candidate) {
			logger.Debug("Manifest found at work tree root", "path", candidate)
			return candidate, nil
		}
	case errors.Is(err, git.ErrRepositoryNotExists):
	default:
		logger.Debug("Work tree lookup failed", "dir", cwd, "error", err)
	}

	return local, nil
}

// InstalledManifest returns the manifest of the project a binary in exeDir
// belongs to. Inside a vendor directory (vendor/bin, or the package's own
// vendor/<vendor>/<package>/bin) that is the manifest next to the outermost
// vendor directory. Otherwise the binary is taken to live in <project>/bin.
func InstalledManifest(exeDir string) (string, bool) {
	if exeDir == "" {
		return "", false
	}

	var projectDir string
	for dir := filepath.Clean(exeDir); ; dir = filepath.Dir(dir) {
		if filepath.Base(dir) == VendorDir {
			projectDir = filepath.Dir(dir)
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	if projectDir == "" {
		projectDir = filepath.Dir(filepath.Clean(exeDir))
	}

	candidate := filepath.Join(projectDir, ManifestFile)
	if fileops.FileExists(candidate) {
		return candidate, true
	}
	return "", false
}

// ExecutableDir is the directory of the running binary, symlinks resolved.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// WorkTreeRoot returns the top directory of the git work tree containing dir.
func WorkTreeRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	return wt.Filesystem.Root(), nil
}
