package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FileInfo represents information about a discovered per-year source file
type FileInfo struct {
	Path    string
	Name    string
	Year    int
	Size    int64
	ModTime time.Time
}

// Discovery provides source file discovery operations
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a new file discovery instance.
// Relative directories passed to its methods are resolved against basePath.
func NewDiscovery(basePath string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{basePath: basePath, logger: logger}
}

// resolve returns dir unchanged when absolute, otherwise joined onto the base path
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// YearFiles builds the expected file for every year, in the order given.
// Nothing is read from disk; a missing file surfaces when it is opened.
func (d *Discovery) YearFiles(dir, pattern string, years []int) []FileInfo {
	fullPath := d.resolve(dir)

	files := make([]FileInfo, 0, len(years))
	for _, year := range years {
		name := FileNameForYear(pattern, year)
		files = append(files, FileInfo{
			Path: filepath.Join(fullPath, name),
			Name: name,
			Year: year,
		})
	}
	return files
}

// FindYearFiles globs pattern directly inside dir (no recursion) and derives each
// file's year by stripping prefix and suffix from its name. Names whose remainder
// is not a plain decimal year are ignored. Results are ordered by year ascending.
func (d *Discovery) FindYearFiles(dir, pattern, prefix, suffix string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", fullPath)
	}

	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		stat, err := os.Stat(match)
		if err != nil || stat.IsDir() {
			continue
		}

		name := filepath.Base(match)
		year, ok := YearFromName(name, prefix, suffix)
		if !ok {
			d.logger.Debug("Ignoring file without a year in its name",
				slog.String("file", name),
				slog.String("pattern", pattern))
			continue
		}

		files = append(files, FileInfo{
			Path:    match,
			Name:    name,
			Year:    year,
			Size:    stat.Size(),
			ModTime: stat.ModTime(),
		})
	}

	// Filename order only equals year order for equal-width years.
	sort.Slice(files, func(i, j int) bool {
		if files[i].Year != files[j].Year {
			return files[i].Year < files[j].Year
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FileNameForYear formats the naming convention with year
func FileNameForYear(pattern string, year int) string {
	return fmt.Sprintf(pattern, year)
}

// YearFromName extracts the year from a file name such as yob2020.txt.
// The remainder must be written the way %d formats it: digits only, no sign
// and no leading zeros, so each year maps to exactly one file name.
func YearFromName(name, prefix, suffix string) (int, bool) {
	if len(name) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return 0, false
	}
	rest := name[len(prefix) : len(name)-len(suffix)]
	if rest == "" || rest[0] == '0' {
		return 0, false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return 0, false
		}
	}

	year, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return year, true
}

// PatternAffixes splits a glob with a single '*' into its literal prefix and suffix.
// ok is false when the glob has no '*', more than one, or other meta characters.
func PatternAffixes(pattern string) (prefix, suffix string, ok bool) {
	if strings.Count(pattern, "*") != 1 || strings.ContainsAny(pattern, "?[\\") {
		return "", "", false
	}
	i := strings.Index(pattern, "*")
	return pattern[:i], pattern[i+1:], true
}

// NormalizeYears returns years sorted ascending with duplicates removed
func NormalizeYears(years []int) []int {
	if len(years) == 0 {
		return nil
	}

	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	out := sorted[:1]
	for _, y := range sorted[1:] {
		if y != out[len(out)-1] {
			out = append(out, y)
		}
	}
	return out
}
