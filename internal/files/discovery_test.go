package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toshiakit/string-vs-cell/internal/shared/testutil"
)

func TestNewDiscovery(t *testing.T) {
	basePath := "/test/base"
	discovery := NewDiscovery(basePath, nil)

	assert.NotNil(t, discovery)
	assert.Equal(t, basePath, discovery.basePath)
	assert.NotNil(t, discovery.logger)
}

func TestYearFiles(t *testing.T) {
	discovery := NewDiscovery("/base", nil)

	files := discovery.YearFiles("names", "yob%d.txt", []int{2020, 2021})
	require.Len(t, files, 2)

	assert.Equal(t, filepath.Join("/base", "names", "yob2020.txt"), files[0].Path)
	assert.Equal(t, "yob2020.txt", files[0].Name)
	assert.Equal(t, 2020, files[0].Year)
	assert.Equal(t, 2021, files[1].Year)

	abs := discovery.YearFiles("/abs", "yob%d.txt", []int{1999})
	assert.Equal(t, filepath.Join("/abs", "yob1999.txt"), abs[0].Path)

	assert.Empty(t, discovery.YearFiles("/abs", "yob%d.txt", nil))
}

func TestFindYearFiles(t *testing.T) {
	tests := []struct {
		name          string
		files         []string
		dirs          []string
		expectedNames []string
		expectedYears []int
	}{
		{
			name:          "ordered by year",
			files:         []string{"yob2021.txt", "yob1999.txt", "yob2020.txt"},
			expectedNames: []string{"yob1999.txt", "yob2020.txt", "yob2021.txt"},
			expectedYears: []int{1999, 2020, 2021},
		},
		{
			name:          "mixed width years ordered numerically",
			files:         []string{"yob2020.txt", "yob999.txt", "yob10000.txt"},
			expectedNames: []string{"yob999.txt", "yob2020.txt", "yob10000.txt"},
			expectedYears: []int{999, 2020, 10000},
		},
		{
			name:          "non-canonical years are ignored",
			files:         []string{"yob2020.txt", "yob02020.txt", "yob+2021.txt"},
			expectedNames: []string{"yob2020.txt"},
			expectedYears: []int{2020},
		},
		{
			name:          "non-integer remainders are ignored",
			files:         []string{"yob2020.txt", "yobABCD.txt", "yob.txt", "yob2020-old.txt"},
			expectedNames: []string{"yob2020.txt"},
			expectedYears: []int{2020},
		},
		{
			name:          "other files are ignored",
			files:         []string{"yob2020.txt", "names.csv", "readme.txt", "yob2021.csv"},
			expectedNames: []string{"yob2020.txt"},
			expectedYears: []int{2020},
		},
		{
			name:          "directories are skipped",
			files:         []string{"yob2020.txt"},
			dirs:          []string{"yob2021.txt"},
			expectedNames: []string{"yob2020.txt"},
			expectedYears: []int{2020},
		},
		{
			name:  "empty directory",
			files: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("Jack,M,1\n"), 0644))
			}
			for _, name := range tt.dirs {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0755))
			}

			logger, handler := testutil.NewTestLogger(t)
			discovery := NewDiscovery("", logger)

			files, err := discovery.FindYearFiles(dir, "yob*.txt", "yob", ".txt")
			require.NoError(t, err)

			var names []string
			var years []int
			for _, f := range files {
				names = append(names, f.Name)
				years = append(years, f.Year)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
				assert.Equal(t, int64(9), f.Size)
			}
			assert.Equal(t, tt.expectedNames, names)
			assert.Equal(t, tt.expectedYears, years)

			if tt.name == "non-integer remainders are ignored" {
				assert.Equal(t, 3, handler.CountByMessage("Ignoring file without a year in its name"))
			}
		})
	}
}

func TestFindYearFiles_Errors(t *testing.T) {
	discovery := NewDiscovery("", nil)

	_, err := discovery.FindYearFiles(filepath.Join(t.TempDir(), "missing"), "yob*.txt", "yob", ".txt")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "yob2020.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = discovery.FindYearFiles(file, "yob*.txt", "yob", ".txt")
	assert.Error(t, err)

	_, err = discovery.FindYearFiles(t.TempDir(), "yob[.txt", "yob", ".txt")
	assert.Error(t, err)
}

func TestFindYearFiles_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "names"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "names", "yob1880.txt"), nil, 0644))

	files, err := NewDiscovery(base, nil).FindYearFiles("names", "yob*.txt", "yob", ".txt")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 1880, files[0].Year)
}

func TestYearFromName(t *testing.T) {
	tests := []struct {
		name   string
		year   int
		wantOK bool
	}{
		{"yob2020.txt", 2020, true},
		{"yob1880.txt", 1880, true},
		{"yob.txt", 0, false},
		{"yobXX.txt", 0, false},
		{"yob-1.txt", 0, false},
		{"yob0.txt", 0, false},
		{"names2020.txt", 0, false},
		{"yob2020.csv", 0, false},
		{"yob999.txt", 999, true},
		{"yob02020.txt", 0, false},
		{"yob+2020.txt", 0, false},
		{"yob 2020.txt", 0, false},
		{"yob.txt.txt", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := YearFromName(tt.name, "yob", ".txt")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestPatternAffixes(t *testing.T) {
	prefix, suffix, ok := PatternAffixes("yob*.txt")
	assert.True(t, ok)
	assert.Equal(t, "yob", prefix)
	assert.Equal(t, ".txt", suffix)

	prefix, suffix, ok = PatternAffixes("*.csv")
	assert.True(t, ok)
	assert.Equal(t, "", prefix)
	assert.Equal(t, ".csv", suffix)

	for _, pattern := range []string{"yob2020.txt", "yob*.*", "yob?.txt", "yob[0-9]*.txt"} {
		_, _, ok := PatternAffixes(pattern)
		assert.False(t, ok, pattern)
	}
}

func TestNormalizeYears(t *testing.T) {
	assert.Equal(t, []int{2019, 2020, 2021}, NormalizeYears([]int{2021, 2019, 2020, 2021, 2019}))
	assert.Equal(t, []int{2020}, NormalizeYears([]int{2020}))
	assert.Nil(t, NormalizeYears(nil))

	in := []int{3, 1, 2}
	NormalizeYears(in)
	assert.Equal(t, []int{3, 1, 2}, in, "input must not be reordered")
}

func TestFileNameForYear(t *testing.T) {
	assert.Equal(t, "yob2020.txt", FileNameForYear("yob%d.txt", 2020))
	assert.Equal(t, "names_1999.csv", FileNameForYear("names_%d.csv", 1999))
}
