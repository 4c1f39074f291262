package domain

// Sex is the single-character sex code used by the yearly name files.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Valid reports whether s is one of the two recognised codes.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Record represents one row of the ingested dataset.
// Year is a provenance stamp taken from the source filename, never from file content.
type Record struct {
	Name   string `json:"name" csv:"name" validate:"required"`
	Sex    Sex    `json:"sex" csv:"sex" validate:"required,oneof=M F"`
	Births int64  `json:"births" csv:"births" validate:"min=0"`
	Year   int    `json:"year" csv:"year" validate:"min=1"`
}

// Dataset is the ordered concatenation of every per-file record set.
// Rows are ordered by source file (ascending year) and then by row order within the file.
type Dataset []Record

// Years returns the year column in row order.
func (d Dataset) Years() []int {
	years := make([]int, len(d))
	for i, r := range d {
		years[i] = r.Year
	}
	return years
}

// DatasetColumns is the fixed column set of a Dataset, in export order.
var DatasetColumns = []string{"name", "sex", "births", "year"}
