// Package dataprocessing parses yearly name files and queries the resulting dataset.
//
// # Parsing
//
// Parser reads the fixed 3-column schema (name, sex, births). Rows are split on
// commas by default, or on runs of whitespace with ParseOptions.Whitespace.
// Blank lines and a leading "name,sex,births" header are skipped.
//
//	records, err := dataprocessing.ParseFile("data/yob2020.txt", dataprocessing.ParseOptions{})
//
// Parsed records carry no year. The loader stamps the year derived from the filename.
//
// # Errors
//
// A row with the wrong number of columns is a schema mismatch, which also
// matches errors.ErrParse. A sex code other than M or F, or births that are not
// a non-negative integer, is a parse error. Both carry the path and line in
// their context; field errors also carry the 1-based column.
//
// # Queries
//
// Filter combines predicates conjunctively:
//
//	jack := dataprocessing.Filter(ds, dataprocessing.NameIs("Jack"), dataprocessing.SexIs(domain.SexMale))
//
// GroupByNameYear and GroupByNameSexYear sum births per group in first-appearance
// order. NameTotals and YearTotals aggregate across the whole dataset.
package dataprocessing
