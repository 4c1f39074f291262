package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Paths contains every input and output location of a run.
// All of them derive from the base directory: relative input directories and
// output files are resolved against it, never against the working directory.
// Only a relative base directory itself is made absolute from the working directory.
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string
}

// NewPaths builds the path set rooted at baseDir
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory must not be empty")
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	return &Paths{
		BaseDir:    abs,
		DataDir:    filepath.Join(abs, DefaultDataDir),
		ReportsDir: filepath.Join(abs, DefaultReportsDir),
		LogsDir:    filepath.Join(abs, DefaultLogsDir),
	}, nil
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// ResolveInput returns the directory the source files are read from. An empty
// dir means the data directory; a relative one is joined onto the base directory.
func (p *Paths) ResolveInput(dir string) string {
	switch {
	case dir == "":
		return p.DataDir
	case filepath.IsAbs(dir):
		return filepath.Clean(dir)
	default:
		return filepath.Join(p.BaseDir, dir)
	}
}

// Resolve returns path unchanged when absolute, otherwise joined onto the reports directory
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return p.GetReportPath(path)
}

// LogPathResolution logs the resolved directories for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		))
}
