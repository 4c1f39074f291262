// Package files locates per-year source files and manages run outputs.
//
// Discovery has two entry points. YearFiles builds the expected path for every
// requested year from a naming convention such as "yob%d.txt". FindYearFiles
// globs a directory for a wildcard such as "yob*.txt" and derives each file's
// year by stripping the literal prefix and suffix from its name.
//
// Manager resolves output paths against config.Paths and writes files atomically.
//
// Example usage:
//
//	discovery := files.NewDiscovery("", logger)
//	found, err := discovery.FindYearFiles("/data/names", "yob*.txt", "yob", ".txt")
package files
