package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/toshiakit/string-vs-cell/internal/errors"
)

// FileValidator provides the pre-flight checks the CLI runs before a load
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory validates that the input directory exists and reports
// how many files match pattern. Finding no files is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string, pattern string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return apperrors.NewFileNotFoundError(dir, err)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat directory %s", dir), err).
			WithContext(apperrors.ContextPath, dir)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is not a directory", dir)).
			WithContext(apperrors.ContextPath, dir)
	}

	if pattern != "" {
		count, err := v.CountFiles(dir, pattern)
		if err != nil {
			return err
		}

		if count == 0 {
			v.logger.Warn("No files matching pattern found",
				slog.String("directory", dir),
				slog.String("pattern", pattern))
			return nil
		}

		v.logger.Info("Input directory validated",
			slog.String("directory", dir),
			slog.Int("files_found", count),
			slog.String("pattern", pattern))
	}

	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// CountFiles counts files matching a pattern in a directory
func (v *FileValidator) CountFiles(dir string, pattern string) (int, error) {
	fullPattern := filepath.Join(dir, pattern)
	matches, err := filepath.Glob(fullPattern)
	if err != nil {
		v.logger.Error("Failed to count files",
			slog.String("pattern", fullPattern),
			slog.String("error", err.Error()))
		return 0, apperrors.NewAppValidationError(fmt.Sprintf("invalid pattern %q: %v", pattern, err))
	}

	// Filter out directories from matches
	fileCount := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err == nil && !info.IsDir() {
			fileCount++
		}
	}

	v.logger.Debug("Files counted",
		slog.String("directory", dir),
		slog.String("pattern", pattern),
		slog.Int("count", fileCount))
	return fileCount, nil
}

// ValidateExtension checks that an output path carries the expected extension
func (v *FileValidator) ValidateExtension(path string, want string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != strings.ToLower(want) {
		v.logger.Error("Unexpected file extension",
			slog.String("file", path),
			slog.String("extension", ext),
			slog.String("expected", want))
		return apperrors.NewAppValidationError(
			fmt.Sprintf("file %s must have extension %s (got %q)", path, want, ext))
	}
	return nil
}
