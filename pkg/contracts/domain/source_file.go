package domain

import (
	"time"
)

// SourceFile describes one per-year input file discovered during a load.
type SourceFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Year     int    `json:"year"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"` // BLAKE2b-256 of the raw file bytes
	Rows     int    `json:"rows"`
}

// SkippedFile records a file that failed to load while failures were being skipped.
type SkippedFile struct {
	Path   string `json:"path"`
	Year   int    `json:"year"`
	Reason string `json:"reason"`
}

// DiscoveryMode identifies how the source files of a load were enumerated.
type DiscoveryMode string

const (
	// DiscoveryRange builds one expected path per year of an explicit range.
	DiscoveryRange DiscoveryMode = "range"
	// DiscoveryGlob enumerates files matching a wildcard pattern.
	DiscoveryGlob DiscoveryMode = "glob"
)

// LoadManifest is the audit trail of a single load.
type LoadManifest struct {
	ID        string        `json:"id"`
	Directory string        `json:"directory"`
	Mode      DiscoveryMode `json:"mode"`
	Pattern   string        `json:"pattern"`
	Years     []int         `json:"years"`
	Files     []SourceFile  `json:"files"`
	Skipped   []SkippedFile `json:"skipped,omitempty"`
	TotalRows int           `json:"total_rows"`
	StartTime time.Time     `json:"start_time"`
	Duration  string        `json:"duration"`
}
