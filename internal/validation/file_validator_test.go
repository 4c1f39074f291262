package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/toshiakit/string-vs-cell/internal/errors"
	"github.com/toshiakit/string-vs-cell/internal/shared/testutil"
)

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		pattern       string
		wantErr       error
		errorContains string
		logMessage    string
	}{
		{
			name: "valid directory with files",
			setupFunc: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "yob2020.txt"), []byte("Jack,M,1"), 0644))
				return dir
			},
			pattern:    "yob*.txt",
			logMessage: "Input directory validated",
		},
		{
			name: "valid directory without files",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			pattern:    "yob*.txt",
			logMessage: "No files matching pattern found",
		},
		{
			name: "non-existent directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantErr:       apperrors.ErrFileNotFound,
			errorContains: "file not found",
		},
		{
			name: "path is file not directory",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "yob2020.txt")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantErr:       apperrors.ErrValidation,
			errorContains: "not a directory",
		},
		{
			name: "malformed pattern",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			pattern: "yob[.txt",
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			validator := NewFileValidator(logger)
			dir := tt.setupFunc(t)

			err := validator.ValidateInputDirectory(dir, tt.pattern)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}
			assert.NoError(t, err)
			if tt.logMessage != "" {
				assert.True(t, handler.ContainsMessage(tt.logMessage))
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "reports", "2024")
	require.NoError(t, validator.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	err = validator.ValidateOutputDirectory(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
}

func TestFileValidator_CountFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"yob2019.txt", "yob2020.txt", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "yob2021.txt"), 0755))

	count, err := NewFileValidator(nil).CountFiles(dir, "yob*.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "directories are not counted")
}

func TestFileValidator_ValidateExtension(t *testing.T) {
	validator := NewFileValidator(nil)

	assert.NoError(t, validator.ValidateExtension("out/names.csv", ".csv"))
	assert.NoError(t, validator.ValidateExtension("NAMES.XLSX", ".xlsx"))

	err := validator.ValidateExtension("names.txt", ".csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
