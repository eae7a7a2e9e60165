package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"

	"composermcp/pkg/fileops"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrConfigParse means the file exists but is not a JSON object.
	ErrConfigParse = errors.New("could not parse configuration file")
	// ErrWriteFailure means the reconciled document could not be persisted.
	ErrWriteFailure = errors.New("could not write configuration file")
)

// Indent matches the pretty-print width Composer itself writes.
const Indent = "    "

// Object is a JSON object whose members keep their file order.
type Object = orderedmap.OrderedMap[string, json.RawMessage]

// Document is a JSON configuration file held in memory with its key order
// intact, so rewriting it only touches the members that were edited.
type Document struct {
	path   string
	exists bool
	root   *Object
}

// ReadDocument loads path. An absent file yields an empty document.
func ReadDocument(path string) (*Document, error) {
	doc := &Document{path: path, root: orderedmap.New[string, json.RawMessage]()}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	doc.exists = true

	if err := decodeObject(data, doc.root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return doc, nil
}

func decodeObject(data []byte, into *Object) error {
	trimmed := bytes.TrimSpace(data)
	// An empty PHP array is written as [] even where an object is meant.
	if string(trimmed) == "[]" {
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("expected a JSON object")
	}
	if !json.Valid(trimmed) {
		return errors.New("invalid JSON")
	}
	return json.Unmarshal(trimmed, into)
}

// Path is the file the document was read from.
func (d *Document) Path() string { return d.path }

// Exists reports whether the file was present when read.
func (d *Document) Exists() bool { return d.exists }

// Section returns a copy of the named top-level object and whether it was present.
func (d *Document) Section(name string) (*Object, bool, error) {
	section := orderedmap.New[string, json.RawMessage]()

	raw, ok := d.root.Get(name)
	if !ok {
		return section, false, nil
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return section, true, nil
	}
	if err := decodeObject(raw, section); err != nil {
		return nil, true, fmt.Errorf("%w: %s: section %q: %v", ErrConfigParse, d.path, name, err)
	}
	return section, true, nil
}

// SetSection stores section under name, keeping the key's position if it already exists.
func (d *Document) SetSection(name string, section *Object) error {
	raw, err := encodeObject(section)
	if err != nil {
		return err
	}
	d.root.Set(name, raw)
	return nil
}

// Encode renders the document pretty-printed, without HTML or slash escaping.
func (d *Document) Encode() ([]byte, error) {
	compact, err := encodeObject(d.root)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", Indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Write persists the document atomically.
func (d *Document) Write() error {
	data, err := d.Encode()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, d.path, err)
	}
	if err := fileops.AtomicWriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, d.path, err)
	}
	d.exists = true
	return nil
}

func encodeObject(obj *Object) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := marshalValue(pair.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(unescapeSlashes(bytes.TrimSpace(pair.Value)))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// unescapeSlashes rewrites \/ inside string literals as /, so members carried
// over verbatim match what marshalValue writes for new ones.
func unescapeSlashes(raw []byte) []byte {
	if !bytes.Contains(raw, []byte(`\/`)) {
		return raw
	}

	out := make([]byte, 0, len(raw))
	inString := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case !inString:
			inString = c == '"'
		case c == '"':
			inString = false
		case c == '\\' && i+1 < len(raw):
			i++
			if raw[i] == '/' {
				out = append(out, '/')
				continue
			}
			out = append(out, c)
			c = raw[i]
		}
		out = append(out, c)
	}
	return out
}

// marshalValue encodes v the way it should appear on disk: no HTML escaping,
// no trailing newline.
func marshalValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// sameValue reports whether raw decodes to the same JSON value as expected.
func sameValue(raw json.RawMessage, expected any) bool {
	var current any
	if err := json.Unmarshal(raw, &current); err != nil {
		return false
	}

	encoded, err := marshalValue(expected)
	if err != nil {
		return false
	}
	var want any
	if err := json.Unmarshal(encoded, &want); err != nil {
		return false
	}
	return reflect.DeepEqual(current, want)
}
