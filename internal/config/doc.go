// Package config provides centralized configuration management for the
// baby-names ingestion tools.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern BABYNAMES_<SECTION>_<KEY>:
//
//	BABYNAMES_LOADER_DIR=/data/names
//	BABYNAMES_LOADER_START_YEAR=1880
//	BABYNAMES_LOADER_END_YEAR=2022
//	BABYNAMES_LOADER_SKIP_FAILURES=true
//	BABYNAMES_LOGGING_LEVEL=debug
//
// # Path Management
//
// Input and output locations are derived from the export base directory
// through the Paths type; relative paths are joined onto it:
//
//	paths, err := config.NewPaths(cfg.Export.BaseDir)
//	dataDir := paths.ResolveInput(cfg.Loader.Dir)
//	csvPath := paths.Resolve(cfg.Export.CSV)
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
