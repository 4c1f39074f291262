package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/toshiakit/string-vs-cell/internal/config"
	"github.com/toshiakit/string-vs-cell/internal/files"
	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

// WriteManifest saves the load manifest as indented JSON and returns the resolved path
func WriteManifest(paths *config.Paths, filePath string, m *domain.LoadManifest) (string, error) {
	if m == nil {
		return "", fmt.Errorf("manifest is nil")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	fullPath := paths.Resolve(filePath)
	if err := files.NewManager(paths).WriteFile(fullPath, data); err != nil {
		return "", fmt.Errorf("failed to save manifest: %w", err)
	}

	slog.Debug("Manifest saved",
		slog.String("path", fullPath),
		slog.String("load_id", m.ID))

	return fullPath, nil
}
