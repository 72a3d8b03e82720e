package workspace

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docversions/internal/logfields"
)

// Manager handles one ephemeral, uniquely named workspace directory.
type Manager struct {
	baseDir string
	tempDir string
	logger  *slog.Logger
}

// NewManager creates a manager whose directory will be created under baseDir
// (os.TempDir() when empty).
func NewManager(baseDir string, logger *slog.Logger) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{baseDir: baseDir, logger: logger}
}

// Create creates the workspace directory (docversions-<random>).
func (m *Manager) Create() error {
	tempDir, err := os.MkdirTemp(m.baseDir, "docversions-*")
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.tempDir = tempDir
	m.logger.Debug("Created workspace", logfields.Path(tempDir))
	return nil
}

// GetPath returns the path to the workspace directory, or "" before Create.
func (m *Manager) GetPath() string {
	return m.tempDir
}

// Cleanup removes the workspace directory. Calling it again is a no-op.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	m.logger.Debug("Cleaned up workspace", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}
