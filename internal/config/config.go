package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Loader    LoaderConfig    `yaml:"loader" envconfig:"LOADER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoaderConfig controls discovery and parsing of the yearly files
type LoaderConfig struct {
	Dir          string `yaml:"dir" envconfig:"DIR" validate:"required"`
	Mode         string `yaml:"mode" envconfig:"MODE" validate:"oneof=range glob"`
	StartYear    int    `yaml:"start_year" envconfig:"START_YEAR" validate:"min=1"`
	EndYear      int    `yaml:"end_year" envconfig:"END_YEAR" validate:"gtefield=StartYear"`
	FilePattern  string `yaml:"file_pattern" envconfig:"FILE_PATTERN" validate:"required,contains=%d"`
	GlobPattern  string `yaml:"glob_pattern" envconfig:"GLOB_PATTERN" validate:"required"`
	Delimiter    string `yaml:"delimiter" envconfig:"DELIMITER" validate:"oneof=comma whitespace"`
	SkipFailures bool   `yaml:"skip_failures" envconfig:"SKIP_FAILURES"`
	Workers      int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ExportConfig contains output locations. Empty file names disable that export.
type ExportConfig struct {
	BaseDir  string `yaml:"base_dir" envconfig:"BASE_DIR"`
	CSV      string `yaml:"csv" envconfig:"CSV"`
	XLSX     string `yaml:"xlsx" envconfig:"XLSX"`
	Manifest string `yaml:"manifest" envconfig:"MANIFEST"`
	BOM      bool   `yaml:"bom" envconfig:"BOM"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled" envconfig:"ENABLED"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

var validate = validator.New()

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. An empty path
// searches the default locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
		}
	}

	// Only variables that are set are applied, so file values survive.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalises the logging settings
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Loader.Mode = strings.ToLower(c.Loader.Mode)

	if err := validate.Struct(c); err != nil {
		return err
	}

	// Always use JSON format
	if c.Logging.Format != DefaultLogFormat {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Output != OutputConsole && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogsDir + "/babynames.log"
	}

	return nil
}

// Years returns the inclusive year range of the loader configuration
func (c LoaderConfig) Years() []int {
	if c.EndYear < c.StartYear {
		return nil
	}
	years := make([]int, 0, c.EndYear-c.StartYear+1)
	for y := c.StartYear; y <= c.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"babynames.yaml",
		"configs/babynames.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			Dir:         DefaultDataDir,
			Mode:        ModeRange,
			StartYear:   DefaultStartYear,
			EndYear:     DefaultEndYear,
			FilePattern: DefaultFilePattern,
			GlobPattern: DefaultGlobPattern,
			Delimiter:   DelimiterComma,
			Workers:     1,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: OutputConsole,
		},
		Export: ExportConfig{
			BaseDir: ".",
		},
		Telemetry: TelemetryConfig{
			Enabled:       true,
			TraceExporter: "none",
			Environment:   "development",
		},
	}
}
