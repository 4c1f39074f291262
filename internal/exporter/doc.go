// Package exporter writes a loaded dataset and its manifest to disk.
//
// CSVWriter produces name,sex,births,year files, optionally prefixed with a
// UTF-8 BOM so Excel detects the encoding. ExcelWriter produces a workbook with
// a Names sheet holding every row and a Totals sheet holding births per year.
// WriteManifest stores the audit trail of a load as JSON.
//
// Relative paths resolve against the reports directory of config.Paths.
//
//	paths, _ := config.NewPaths(".")
//	out, err := exporter.NewCSVWriter(paths).WriteDataset("names.csv", ds, true)
package exporter
