package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment is the process state captured once at startup: working directory,
// repository root and environment variables. Components receive it instead of
// calling os.Getwd or os.Getenv themselves.
type Environment struct {
	// WorkDir is the absolute directory docversions was started in (the workspace).
	WorkDir string
	// RepoRoot is the root of the git working tree containing WorkDir.
	RepoRoot string
	// WorkspaceRel is WorkDir relative to RepoRoot ("." when they are equal).
	WorkspaceRel string

	vars map[string]string
}

// NewEnvironment builds an Environment from explicit values. Used by tests and by CaptureEnvironment.
func NewEnvironment(workDir, repoRoot string, vars map[string]string) (*Environment, error) {
	rel, err := filepath.Rel(repoRoot, workDir)
	if err != nil {
		return nil, fmt.Errorf("workspace %s is not inside repository %s: %w", workDir, repoRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("workspace %s is not inside repository %s", workDir, repoRoot)
	}

	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}

	return &Environment{
		WorkDir:      workDir,
		RepoRoot:     repoRoot,
		WorkspaceRel: rel,
		vars:         copied,
	}, nil
}

// CaptureEnvironment snapshots the working directory and environment of the current process.
// findRoot resolves the repository root for a directory.
func CaptureEnvironment(findRoot func(dir string) (string, error)) (*Environment, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	wd = resolvePath(wd)

	root, err := findRoot(wd)
	if err != nil {
		return nil, err
	}

	return NewEnvironment(wd, resolvePath(root), environMap(os.Environ()))
}

// Getenv returns the captured value of key, or "".
func (e *Environment) Getenv(key string) string {
	if e == nil {
		return ""
	}
	return e.vars[key]
}

// LookupEnv reports whether key was set when the environment was captured.
func (e *Environment) LookupEnv(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.vars[key]
	return v, ok
}

// Nested reports whether the workspace is a subdirectory of the repository.
func (e *Environment) Nested() bool {
	return e.WorkspaceRel != "."
}

// Resolve makes path absolute relative to the workspace.
func (e *Environment) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.WorkDir, path)
}

func environMap(environ []string) map[string]string {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		vars[k] = v
	}
	return vars
}

func resolvePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return p
}
