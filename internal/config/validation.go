package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docversions/internal/fsutil"
)

var (
	safeLabelPattern  = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// ValidateConfig validates a normalized and defaulted configuration.
func ValidateConfig(cfg *Config) error {
	validator := &configurationValidator{config: cfg}
	return validator.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateVersions(); err != nil {
		return err
	}
	if err := cv.validateBuild(); err != nil {
		return err
	}
	if err := cv.validatePackages(); err != nil {
		return err
	}
	return cv.validateOutput()
}

func (cv *configurationValidator) validateVersions() error {
	v := cv.config.Versions
	if !safeLabelPattern.MatchString(v.CurrentLabel) || v.CurrentLabel == "." || v.CurrentLabel == ".." {
		return fmt.Errorf("versions.current_label %q must only contain letters, digits, '_', '.' and '-'", v.CurrentLabel)
	}
	if strings.ContainsAny(v.Remote, " /") {
		return fmt.Errorf("versions.remote %q is not a valid remote name", v.Remote)
	}
	if v.OnNoMatch != NoMatchFail && v.OnNoMatch != NoMatchFallback {
		return fmt.Errorf("versions.on_no_match %q is not supported", v.OnNoMatch)
	}
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	b := cv.config.Build
	if len(b.Command) == 0 {
		return errors.New("build.command must not be empty")
	}
	fields := []struct{ name, path string }{
		{"build.content_dir", b.ContentDir},
		{"build.artifact_dir", b.ArtifactDir},
		{"build.manifest_file", b.ManifestFile},
	}
	for _, f := range fields {
		if err := validateRelativePath(f.name, f.path); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validatePackages() error {
	switch cv.config.Packages.Manager {
	case PackageManagerNPM, PackageManagerPNPM, PackageManagerYarn, PackageManagerBun:
		return nil
	default:
		return fmt.Errorf("packages.manager %q is not supported", cv.config.Packages.Manager)
	}
}

func (cv *configurationValidator) validateOutput() error {
	o := cv.config.Output
	if o.Directory == "" {
		return errors.New("output.directory must not be empty")
	}
	if o.Manifest == "" {
		return errors.New("output.manifest must not be empty")
	}
	// Both resolve against the workspace for the current label.
	if !filepath.IsAbs(o.Directory) {
		artifact := cv.config.Build.ArtifactDir
		if fsutil.Within(artifact, o.Directory) || fsutil.Within(o.Directory, artifact) {
			return fmt.Errorf("output.directory %q must not overlap build.artifact_dir %q", o.Directory, artifact)
		}
	}
	if !identifierPattern.MatchString(o.ExportName) {
		return fmt.Errorf("output.export_name %q is not a valid identifier", o.ExportName)
	}
	return nil
}

// validateRelativePath rejects absolute paths and paths escaping their base directory.
func validateRelativePath(field, p string) error {
	if p == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("%s %q must be relative", field, p)
	}
	clean := filepath.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s %q must stay inside the package directory", field, p)
	}
	return nil
}
