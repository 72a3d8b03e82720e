package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
)

const exampleConfig = `# docversions configuration
version: "1"

# auto | development | pullRequest | production
# auto picks development outside CI, pullRequest for PR builds and production otherwise.
mode: auto

versions:
  # Tags to build in addition to the current label, e.g. ">=1.0.0, v0.9.3"
  spec: ""
  # Required in production mode unless passed with --branch
  default_branch: main
  remote: origin
  current_label: current
  # fail | fallback
  on_no_match: fail

build:
  command: ["npm", "run", "build"]
  content_dir: content
  artifact_dir: dist
  manifest_file: package.json

packages:
  # npm | pnpm | yarn | bun
  manager: npm

output:
  directory: versions
  manifest: src/generated/versions.ts
  export_name: builtVersions

logging:
  level: info
  format: text
`

// ExampleConfig returns the annotated configuration written by "docversions init".
func ExampleConfig() []byte {
	return []byte(exampleConfig)
}

// WriteExample writes ExampleConfig to path. An existing file is only replaced with force.
func WriteExample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ferrors.FileSystemError("failed to stat configuration file").WithCause(err).Build()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ferrors.FileSystemError(fmt.Sprintf("failed to create %s", dir)).WithCause(err).Build()
		}
	}
	// #nosec G306 -- configuration is not secret
	if err := os.WriteFile(path, ExampleConfig(), 0o644); err != nil {
		return ferrors.FileSystemError("failed to write configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
