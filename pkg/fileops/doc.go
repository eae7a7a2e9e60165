// Package fileops provides small, safe file operations shared by the
// reconciler, the script registry and the installer.
//
// # Atomic Writes
//
// Use AtomicWriteFile() when rewriting configuration files that another
// program (a desktop client, Composer) may read at any time:
//
//	err := fileops.AtomicWriteFile("/path/to/config.json", data, 0o644)
//	// The destination holds either the old or the new content, never a partial write
//
// # Validation
//
// Combine the validators before reading user-supplied files:
//
//	if err := fileops.ValidateFileAccess(path, false); err != nil {
//	    return fmt.Errorf("file access: %w", err)
//	}
//	if err := fileops.ValidateFileSizeLimit(path, 10*1024*1024); err != nil {
//	    return fmt.Errorf("file size: %w", err)
//	}
//
// # Paths
//
// ExpandPath() resolves a leading "~/" against the user's home directory and
// EnsureDirectoryExists() creates directories with 0755 permissions.
package fileops
