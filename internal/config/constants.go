package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "babynames"

	// EnvPrefix namespaces every environment variable, e.g. BABYNAMES_LOADER_DIR
	EnvPrefix = "BABYNAMES"

	// Input file naming convention
	DefaultFilePattern = "yob%d.txt"
	DefaultFilePrefix  = "yob"
	DefaultFileSuffix  = ".txt"
	DefaultGlobPattern = "yob*.txt"

	// Year range of the public SSA national dataset
	DefaultStartYear = 1880
	DefaultEndYear   = 2022

	// File Paths (relative to the configured base directory); DefaultDataDir is
	// also the default input directory
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultReportsDir = "reports"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Load timeout applied by the command line front end
	DefaultLoadTimeout = 10 * time.Minute
)

// Discovery modes
const (
	ModeRange = "range"
	ModeGlob  = "glob"
)

// Log output targets
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputBoth    = "both"
)

// Field delimiters of source files
const (
	DelimiterComma      = "comma"
	DelimiterWhitespace = "whitespace"
)
