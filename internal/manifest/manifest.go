// Package manifest writes the generated list of built version labels consumed by the
// documentation site's version picker.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
)

// GeneratedNotice marks every manifest as machine-written.
const GeneratedNotice = "Code generated by docversions. DO NOT EDIT."

// Format is a manifest encoding, selected by file extension.
type Format string

const (
	FormatTypeScript Format = "typescript"
	FormatJavaScript Format = "javascript"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
)

// ErrUnsupportedFormat is returned for manifest paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// FormatFor returns the format implied by path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return FormatTypeScript, nil
	case ".js", ".mjs", ".cjs":
		return FormatJavaScript, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

type document struct {
	Generated string   `json:"generated" yaml:"-"`
	Versions  []string `json:"versions" yaml:"versions"`
}

// Writer renders and persists manifests.
type Writer struct {
	exportName string
}

// NewWriter creates a writer. exportName is the constant declared by script formats.
func NewWriter(exportName string) *Writer {
	return &Writer{exportName: exportName}
}

// Render encodes labels in format, preserving their order.
func (w *Writer) Render(format Format, labels []string) ([]byte, error) {
	if labels == nil {
		labels = []string{}
	}

	switch format {
	case FormatTypeScript, FormatJavaScript:
		return w.renderScript(format, labels)
	case FormatJSON:
		data, err := json.MarshalIndent(document{Generated: GeneratedNotice, Versions: labels}, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		buf.WriteString("# " + GeneratedNotice + "\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(document{Versions: labels}); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (w *Writer) renderScript(format Format, labels []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("// " + GeneratedNotice + "\n\n")
	fmt.Fprintf(&buf, "export const %s = [", w.exportName)
	for i, label := range labels {
		quoted, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(quoted)
		if i < len(labels)-1 {
			buf.WriteByte(',')
		}
	}
	if len(labels) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteByte(']')
	if format == FormatTypeScript {
		buf.WriteString(" as const")
	}
	buf.WriteString(";\n")
	return buf.Bytes(), nil
}

// Write replaces the manifest at path with labels. Parent directories are created. The
// content goes to a temporary sibling first and is renamed into place, so a failed write
// leaves any previous manifest intact.
func (w *Writer) Write(path string, labels []string) error {
	format, err := FormatFor(path)
	if err != nil {
		return ferrors.ManifestError("cannot write version manifest").
			WithCause(err).WithContext("path", path).Build()
	}
	data, err := w.Render(format, labels)
	if err != nil {
		return ferrors.ManifestError("failed to render version manifest").
			WithCause(err).WithContext("path", path).Build()
	}
	if err := writeAtomic(path, data); err != nil {
		return ferrors.ManifestError("failed to write version manifest").
			WithCause(err).WithContext("path", path).Build()
	}
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// #nosec G302 -- the manifest is source code read by the site build.
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Read returns the labels stored in the manifest at path.
func Read(path string) ([]string, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is the configured manifest location.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc document
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		doc.Versions, err = parseScript(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if doc.Versions == nil {
		doc.Versions = []string{}
	}
	return doc.Versions, nil
}

// parseScript extracts the array literal from a generated script manifest.
func parseScript(data []byte) ([]string, error) {
	decl := bytes.Index(data, []byte("export const "))
	if decl < 0 {
		return nil, errors.New("no exported declaration")
	}
	rest := data[decl:]
	start := bytes.IndexByte(rest, '[')
	end := bytes.LastIndexByte(rest, ']')
	if start < 0 || end < start {
		return nil, errors.New("no array literal")
	}
	var labels []string
	if err := json.Unmarshal(rest[start:end+1], &labels); err != nil {
		return nil, err
	}
	return labels, nil
}
