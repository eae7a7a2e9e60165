package scripts

import "errors"

var (
	// ErrManifestNotFound is returned by Load when the manifest file is absent.
	ErrManifestNotFound = errors.New("composer manifest not found")
	// ErrManifestInvalid is returned by Load when the manifest is not a JSON object.
	ErrManifestInvalid = errors.New("composer manifest is invalid")
	// ErrScriptNotFound is a usage error: the requested name is not declared in the manifest.
	ErrScriptNotFound = errors.New("script not found")
)
