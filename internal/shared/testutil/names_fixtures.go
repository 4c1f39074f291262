package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

// NameRow is one line of a yearly names file before the year stamp is applied.
type NameRow struct {
	Name   string
	Sex    domain.Sex
	Births int64
}

// NamesFixtures writes yob<year>.txt files into a test directory
type NamesFixtures struct {
	Dir string
	t   *testing.T
}

// NewNamesFixtures creates a fixtures manager rooted at a fresh temp directory
func NewNamesFixtures(t *testing.T) *NamesFixtures {
	t.Helper()
	return &NamesFixtures{Dir: t.TempDir(), t: t}
}

// FileName returns the conventional file name for a year
func (f *NamesFixtures) FileName(year int) string {
	return fmt.Sprintf("yob%d.txt", year)
}

// Path returns the full path of the file for a year
func (f *NamesFixtures) Path(year int) string {
	return filepath.Join(f.Dir, f.FileName(year))
}

// WriteYear writes rows for a year in the comma separated SSA layout
func (f *NamesFixtures) WriteYear(year int, rows ...NameRow) string {
	f.t.Helper()

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%s,%d\n", r.Name, r.Sex, r.Births)
	}
	return f.WriteRaw(f.FileName(year), b.String())
}

// WriteRaw writes arbitrary content to a file inside the fixture directory
func (f *NamesFixtures) WriteRaw(name, content string) string {
	f.t.Helper()

	path := filepath.Join(f.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		f.t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// WriteSample writes the two-year sample used across packages:
// 2020 has Jack/M/100 and Emily/F/90, 2021 has Jack/M/80.
func (f *NamesFixtures) WriteSample() {
	f.t.Helper()
	f.WriteYear(2020,
		NameRow{Name: "Jack", Sex: domain.SexMale, Births: 100},
		NameRow{Name: "Emily", Sex: domain.SexFemale, Births: 90},
	)
	f.WriteYear(2021,
		NameRow{Name: "Jack", Sex: domain.SexMale, Births: 80},
	)
}

// SampleDataset returns the dataset a correct load of WriteSample produces
func SampleDataset() domain.Dataset {
	return domain.Dataset{
		{Name: "Jack", Sex: domain.SexMale, Births: 100, Year: 2020},
		{Name: "Emily", Sex: domain.SexFemale, Births: 90, Year: 2020},
		{Name: "Jack", Sex: domain.SexMale, Births: 80, Year: 2021},
	}
}
