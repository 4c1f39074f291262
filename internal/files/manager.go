package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/toshiakit/string-vs-cell/internal/config"
)

// Manager provides the file operations used for run outputs
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// WriteFile writes data to a file through a temporary file in the same
// directory, so readers never observe a half-written output.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Writing file",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Int("size_bytes", len(data)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, fullPath)
}

// resolvePath resolves a path relative to the appropriate base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, config.DefaultLogsDir+"/"):
		return m.paths.GetLogPath(strings.TrimPrefix(path, config.DefaultLogsDir+"/"))
	case strings.HasPrefix(path, config.DefaultDataDir+"/"):
		return filepath.Join(m.paths.DataDir, strings.TrimPrefix(path, config.DefaultDataDir+"/"))
	case strings.HasPrefix(path, config.DefaultReportsDir+"/"):
		return m.paths.GetReportPath(strings.TrimPrefix(path, config.DefaultReportsDir+"/"))
	default:
		// Everything else is an output
		return m.paths.GetReportPath(path)
	}
}
