package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "babynames.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultDataDir, cfg.Loader.Dir)
	assert.Equal(t, ModeRange, cfg.Loader.Mode)
	assert.Equal(t, DefaultStartYear, cfg.Loader.StartYear)
	assert.Equal(t, DefaultEndYear, cfg.Loader.EndYear)
	assert.Equal(t, DefaultFilePattern, cfg.Loader.FilePattern)
	assert.Equal(t, 1, cfg.Loader.Workers)
	assert.False(t, cfg.Loader.SkipFailures)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("BABYNAMES_LOADER_DIR", "/srv/names")
	t.Setenv("BABYNAMES_LOADER_START_YEAR", "2000")
	t.Setenv("BABYNAMES_LOADER_END_YEAR", "2010")
	t.Setenv("BABYNAMES_LOADER_SKIP_FAILURES", "true")
	t.Setenv("BABYNAMES_LOGGING_LEVEL", "DEBUG")

	cfg, err := Load(writeConfigFile(t, "loader:\n  workers: 4\n"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/names", cfg.Loader.Dir)
	assert.Equal(t, 2000, cfg.Loader.StartYear)
	assert.Equal(t, 2010, cfg.Loader.EndYear)
	assert.True(t, cfg.Loader.SkipFailures)
	assert.Equal(t, 4, cfg.Loader.Workers, "file value survives when env is unset")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_FileOverlay(t *testing.T) {
	path := writeConfigFile(t, `
loader:
  dir: names
  mode: glob
  start_year: 1990
  end_year: 1995
logging:
  level: warn
  output: both
export:
  csv: out.csv
telemetry:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "names", cfg.Loader.Dir)
	assert.Equal(t, ModeGlob, cfg.Loader.Mode)
	assert.Equal(t, 1990, cfg.Loader.StartYear)
	assert.Equal(t, 1995, cfg.Loader.EndYear)
	assert.Equal(t, DefaultFilePattern, cfg.Loader.FilePattern, "absent keys keep defaults")
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, OutputBoth, cfg.Logging.Output)
	assert.NotEmpty(t, cfg.Logging.FilePath, "file output gets a default path")
	assert.Equal(t, "out.csv", cfg.Export.CSV)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{
			name:    "end year before start year",
			content: "loader:\n  start_year: 2000\n  end_year: 1999\n",
		},
		{
			name:    "pattern without year verb",
			content: "loader:\n  file_pattern: names.txt\n",
		},
		{
			name:    "unknown mode",
			content: "loader:\n  mode: recursive\n",
		},
		{
			name:    "zero workers",
			content: "loader:\n  workers: 0\n",
		},
		{
			name:    "malformed yaml",
			content: "loader: [unterminated\n",
		},
		{
			name:    "non numeric env year",
			content: "",
			env:     map[string]string{"BABYNAMES_LOADER_START_YEAR": "nineteen"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfigFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoaderConfig_Years(t *testing.T) {
	assert.Equal(t, []int{2019, 2020, 2021}, LoaderConfig{StartYear: 2019, EndYear: 2021}.Years())
	assert.Equal(t, []int{2020}, LoaderConfig{StartYear: 2020, EndYear: 2020}.Years())
	assert.Nil(t, LoaderConfig{StartYear: 2021, EndYear: 2020}.Years())
}
