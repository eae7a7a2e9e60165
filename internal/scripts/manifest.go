// Package scripts loads the scripts declared in a composer.json manifest and
// runs them in a subshell rooted at the manifest's directory.
package scripts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"composermcp/internal/logging"
	"composermcp/pkg/fileops"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MaxManifestSize bounds the manifest file size (10MB max).
const MaxManifestSize = 10 * 1024 * 1024

// StepSeparator joins the steps of a multi-step script, both for listing and execution.
const StepSeparator = " && "

// Script is one named manifest entry.
type Script struct {
	Name string
	// Steps holds the command(s) in declaration order.
	Steps []string
	// MultiStep is true when the manifest declared an array, even a one-element one.
	MultiStep bool
}

// Command returns the script as it appears in listings.
func (s Script) Command() string {
	if !s.MultiStep {
		if len(s.Steps) == 0 {
			return ""
		}
		return s.Steps[0]
	}
	return strings.Join(s.Steps, StepSeparator)
}

// ListedScript is one entry of a ListResult.
type ListedScript struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}

// ListResult is returned by Registry.List.
type ListResult struct {
	Scripts []ListedScript `json:"scripts"`
	Count   int            `json:"count"`
}

// Registry is a read-only snapshot of a manifest's scripts.
type Registry struct {
	path    string
	dir     string
	scripts []Script
	index   map[string]int
	logger  *logging.AppLogger
}

// Load reads the manifest at manifestPath. A manifest without a scripts
// section yields an empty registry.
func Load(manifestPath string, logger *logging.AppLogger) (*Registry, error) {
	absPath, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path %s: %w", manifestPath, err)
	}

	data, err := readManifest(absPath)
	if err != nil {
		return nil, err
	}

	scripts, err := parseScripts(data, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestInvalid, absPath, err)
	}

	r := &Registry{
		path:    absPath,
		dir:     filepath.Dir(absPath),
		scripts: scripts,
		index:   make(map[string]int, len(scripts)),
		logger:  logger,
	}
	for i, s := range scripts {
		r.index[s.Name] = i
	}

	logger.Info("Loaded composer scripts", "manifest", absPath, "count", len(scripts))
	return r, nil
}

func readManifest(path string) ([]byte, error) {
	if err := fileops.ValidateFileSizeLimit(path, MaxManifestSize); err != nil {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestInvalid, path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return data, nil
}

// parseScripts extracts the scripts section, keeping declaration order.
func parseScripts(data []byte, logger *logging.AppLogger) ([]Script, error) {
	var manifest struct {
		Scripts json.RawMessage `json:"scripts"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(manifest.Scripts)
	if len(raw) == 0 || raw[0] != '{' {
		return []Script{}, nil
	}

	section := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, section); err != nil {
		return nil, err
	}

	scripts := make([]Script, 0, section.Len())
	for pair := section.Oldest(); pair != nil; pair = pair.Next() {
		script, ok := decodeDefinition(pair.Key, pair.Value)
		if !ok {
			logger.Debug("Skipping script with unsupported definition", "script", pair.Key)
			continue
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

func decodeDefinition(name string, raw json.RawMessage) (Script, bool) {
	if string(bytes.TrimSpace(raw)) == "null" {
		return Script{}, false
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return Script{Name: name, Steps: []string{single}}, true
	}

	var steps []string
	if err := json.Unmarshal(raw, &steps); err == nil && steps != nil {
		return Script{Name: name, Steps: steps, MultiStep: true}, true
	}

	return Script{}, false
}

// List returns every script in declaration order.
func (r *Registry) List() ListResult {
	listed := make([]ListedScript, 0, len(r.scripts))
	for _, s := range r.scripts {
		listed = append(listed, ListedScript{Name: s.Name, Command: s.Command()})
	}
	return ListResult{Scripts: listed, Count: len(listed)}
}

// Lookup returns the named script.
func (r *Registry) Lookup(name string) (Script, bool) {
	i, ok := r.index[name]
	if !ok {
		return Script{}, false
	}
	return r.scripts[i], true
}

// Names returns the script names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.scripts))
	for i, s := range r.scripts {
		names[i] = s.Name
	}
	return names
}

// Path is the absolute manifest path.
func (r *Registry) Path() string { return r.path }

// Dir is the directory every script runs in.
func (r *Registry) Dir() string { return r.dir }
