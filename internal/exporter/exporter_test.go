package exporter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/toshiakit/string-vs-cell/internal/config"
	"github.com/toshiakit/string-vs-cell/internal/shared/testutil"
	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

func newTestPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	return paths
}

func TestCSVWriter_WriteDataset(t *testing.T) {
	tests := []struct {
		name string
		bom  bool
	}{
		{"plain", false},
		{"with BOM", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := newTestPaths(t)

			out, err := NewCSVWriter(paths).WriteDataset("names.csv", testutil.SampleDataset(), tt.bom)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(paths.ReportsDir, "names.csv"), out)

			content, err := os.ReadFile(out)
			require.NoError(t, err)

			hasBOM := strings.HasPrefix(string(content), string(utf8BOM))
			assert.Equal(t, tt.bom, hasBOM)

			rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(content), string(utf8BOM)))).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, [][]string{
				{"name", "sex", "births", "year"},
				{"Jack", "M", "100", "2020"},
				{"Emily", "F", "90", "2020"},
				{"Jack", "M", "80", "2021"},
			}, rows)
		})
	}
}

func TestCSVWriter_QuotesNames(t *testing.T) {
	paths := newTestPaths(t)
	ds := domain.Dataset{{Name: `O"Neil, Jr`, Sex: domain.SexMale, Births: 1, Year: 1990}}

	out, err := NewCSVWriter(paths).WriteDataset("quoted.csv", ds, false)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"O""Neil, Jr",M,1,1990`)
}

func TestExcelWriter_WriteDataset(t *testing.T) {
	paths := newTestPaths(t)

	out, err := NewExcelWriter(paths).WriteDataset("names.xlsx", testutil.SampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetNames, SheetTotals}, f.GetSheetList())

	rows, err := f.GetRows(SheetNames)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "sex", "births", "year"},
		{"Jack", "M", "100", "2020"},
		{"Emily", "F", "90", "2020"},
		{"Jack", "M", "80", "2021"},
	}, rows)

	totals, err := f.GetRows(SheetTotals)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"year", "births"},
		{"2020", "190"},
		{"2021", "80"},
	}, totals)
}

func TestExcelWriter_EmptyDataset(t *testing.T) {
	paths := newTestPaths(t)

	out, err := NewExcelWriter(paths).WriteDataset("empty.xlsx", nil)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetNames)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExcelWriter_SpillsAcrossSheets(t *testing.T) {
	saved := namesSheetRows
	namesSheetRows = 2
	t.Cleanup(func() { namesSheetRows = saved })

	ds := domain.Dataset{
		{Name: "Jack", Sex: domain.SexMale, Births: 100, Year: 2020},
		{Name: "Emily", Sex: domain.SexFemale, Births: 90, Year: 2020},
		{Name: "Jack", Sex: domain.SexMale, Births: 80, Year: 2021},
		{Name: "Zoe", Sex: domain.SexFemale, Births: 3, Year: 2021},
		{Name: "Ada", Sex: domain.SexFemale, Births: 1, Year: 2022},
	}

	tests := []struct {
		name   string
		rows   int
		sheets []string
	}{
		{"exactly one sheet", 2, []string{"Names", "Totals"}},
		{"one row over the limit", 3, []string{"Names", "Names_2", "Totals"}},
		{"three sheets", 5, []string{"Names", "Names_2", "Names_3", "Totals"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewExcelWriter(newTestPaths(t)).WriteDataset("names.xlsx", ds[:tt.rows])
			require.NoError(t, err)

			f, err := excelize.OpenFile(out)
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, tt.sheets, f.GetSheetList())

			var got [][]string
			for _, sheet := range tt.sheets[:len(tt.sheets)-1] {
				rows, err := f.GetRows(sheet)
				require.NoError(t, err)
				require.NotEmpty(t, rows)
				assert.Equal(t, []string{"name", "sex", "births", "year"}, rows[0], sheet)
				assert.LessOrEqual(t, len(rows)-1, namesSheetRows, sheet)
				got = append(got, rows[1:]...)
			}
			require.Len(t, got, tt.rows)
			for i, r := range ds[:tt.rows] {
				assert.Equal(t, recordRow(r), got[i])
			}
		})
	}
}

func TestExcelWriter_FullWorksheet(t *testing.T) {
	if testing.Short() {
		t.Skip("writes more than a million rows")
	}

	ds := make(domain.Dataset, excelize.TotalRows)
	for i := range ds {
		ds[i] = domain.Record{Name: "Jack", Sex: domain.SexMale, Births: int64(i), Year: 2020}
	}

	out, err := NewExcelWriter(newTestPaths(t)).WriteDataset("big.xlsx", ds)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Names", "Names_2", "Totals"}, f.GetSheetList())
	rows, err := f.GetRows("Names_2")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "sex", "births", "year"},
		{"Jack", "M", "1048575", "2020"},
	}, rows)
}

func TestNamesSheet(t *testing.T) {
	assert.Equal(t, "Names", NamesSheet(0))
	assert.Equal(t, "Names_2", NamesSheet(1))
	assert.Equal(t, "Names_10", NamesSheet(9))
}

func TestWriteManifest(t *testing.T) {
	paths := newTestPaths(t)
	m := &domain.LoadManifest{
		ID:        "load-1",
		Directory: "/data",
		Mode:      domain.DiscoveryRange,
		Pattern:   "yob%d.txt",
		Years:     []int{2020},
		Files:     []domain.SourceFile{{Path: "/data/yob2020.txt", Name: "yob2020.txt", Year: 2020, Rows: 2}},
		TotalRows: 2,
		StartTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  "1ms",
	}

	out, err := WriteManifest(paths, "manifest.json", m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "manifest.json"), out)

	content, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded domain.LoadManifest
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, *m, decoded)
	assert.NotContains(t, string(content), "skipped", "empty skip list is omitted")

	_, err = WriteManifest(paths, "nil.json", nil)
	assert.Error(t, err)
}
