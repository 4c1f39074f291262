package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/toshiakit/string-vs-cell/internal/config"
	"github.com/toshiakit/string-vs-cell/internal/dataprocessing"
	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

// Sheet names of the workbook export
const (
	SheetNames  = "Names"
	SheetTotals = "Totals"
)

// namesSheetRows is the number of records per Names sheet: a worksheet holds
// excelize.TotalRows rows and the first one is the header
var namesSheetRows = excelize.TotalRows - 1

// NamesSheet returns the name of the n-th (zero based) sheet holding records:
// Names, Names_2, Names_3, ...
func NamesSheet(n int) string {
	if n == 0 {
		return SheetNames
	}
	return fmt.Sprintf("%s_%d", SheetNames, n+1)
}

// ExcelWriter exports a dataset as an XLSX workbook
type ExcelWriter struct {
	paths *config.Paths
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(paths *config.Paths) *ExcelWriter {
	return &ExcelWriter{paths: paths}
}

// WriteDataset writes every row to the Names sheet and births per year to the
// Totals sheet. Datasets larger than one worksheet continue on Names_2,
// Names_3 and so on, each with its own header. It returns the resolved output path.
func (w *ExcelWriter) WriteDataset(filePath string, ds domain.Dataset) (string, error) {
	fullPath := w.paths.Resolve(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetNames); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeNamesSheets(f, ds, headerStyle); err != nil {
		return "", err
	}
	if err := writeTotalsSheet(f, ds, headerStyle); err != nil {
		return "", err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Dataset exported to XLSX",
		slog.String("path", fullPath),
		slog.Int("rows", len(ds)))

	return fullPath, nil
}

func writeNamesSheets(f *excelize.File, ds domain.Dataset, headerStyle int) error {
	sheets := (len(ds) + namesSheetRows - 1) / namesSheetRows
	if sheets == 0 {
		sheets = 1
	}

	for n := 0; n < sheets; n++ {
		start := n * namesSheetRows
		end := min(start+namesSheetRows, len(ds))

		name := NamesSheet(n)
		if n > 0 {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", name, err)
			}
		}
		if err := writeNamesSheet(f, name, ds[start:end], headerStyle); err != nil {
			return err
		}
	}

	if sheets > 1 {
		slog.Debug("Dataset split across worksheets",
			slog.Int("sheets", sheets),
			slog.Int("rows_per_sheet", namesSheetRows))
	}
	return nil
}

func writeNamesSheet(f *excelize.File, sheet string, ds domain.Dataset, headerStyle int) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(domain.DatasetColumns))
	for i, col := range domain.DatasetColumns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range ds {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{r.Name, string(r.Sex), r.Births, r.Year}); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i, sheet, err)
		}
	}

	return sw.Flush()
}

func writeTotalsSheet(f *excelize.File, ds domain.Dataset, headerStyle int) error {
	if _, err := f.NewSheet(SheetTotals); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetTotals, "A1", &[]interface{}{"year", "births"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetTotals, "A1", "B1", headerStyle); err != nil {
		return err
	}

	for i, t := range dataprocessing.YearTotals(ds) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetTotals, cell, &[]interface{}{t.Year, t.Births}); err != nil {
			return fmt.Errorf("failed to write total for %d: %w", t.Year, err)
		}
	}
	return nil
}
