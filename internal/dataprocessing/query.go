package dataprocessing

import (
	"sort"

	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

// Predicate selects dataset rows
type Predicate func(domain.Record) bool

// NameIs matches rows with the given name
func NameIs(name string) Predicate {
	return func(r domain.Record) bool { return r.Name == name }
}

// NameIn matches rows whose name is one of names
func NameIn(names ...string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(r domain.Record) bool {
		_, ok := set[r.Name]
		return ok
	}
}

// SexIs matches rows with the given sex code
func SexIs(sex domain.Sex) Predicate {
	return func(r domain.Record) bool { return r.Sex == sex }
}

// YearIs matches rows stamped with year
func YearIs(year int) Predicate {
	return func(r domain.Record) bool { return r.Year == year }
}

// YearIn matches rows whose year is one of years
func YearIn(years ...int) Predicate {
	set := make(map[int]struct{}, len(years))
	for _, y := range years {
		set[y] = struct{}{}
	}
	return func(r domain.Record) bool {
		_, ok := set[r.Year]
		return ok
	}
}

// Filter returns the rows matching every predicate, in dataset order.
// The input is not modified.
func Filter(ds domain.Dataset, preds ...Predicate) domain.Dataset {
	out := make(domain.Dataset, 0)
	for _, r := range ds {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r domain.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// NameYearTotal is the births sum for one (name, year) pair
type NameYearTotal struct {
	Name   string `json:"name"`
	Year   int    `json:"year"`
	Births int64  `json:"births"`
}

// NameSexYearTotal is the births sum for one (name, sex, year) triple
type NameSexYearTotal struct {
	Name   string     `json:"name"`
	Sex    domain.Sex `json:"sex"`
	Year   int        `json:"year"`
	Births int64      `json:"births"`
}

// NameTotal is the births sum for one name across all years
type NameTotal struct {
	Name   string `json:"name"`
	Births int64  `json:"births"`
}

// YearTotal is the births sum for one year
type YearTotal struct {
	Year   int   `json:"year"`
	Births int64 `json:"births"`
}

// GroupByNameYear sums births per (name, year). Groups appear in the order
// their first row appears in ds.
func GroupByNameYear(ds domain.Dataset) []NameYearTotal {
	type key struct {
		name string
		year int
	}
	index := make(map[key]int)
	var out []NameYearTotal
	for _, r := range ds {
		k := key{r.Name, r.Year}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, NameYearTotal{Name: r.Name, Year: r.Year})
		}
		out[i].Births += r.Births
	}
	return out
}

// GroupByNameSexYear sums births per (name, sex, year), in first-appearance order
func GroupByNameSexYear(ds domain.Dataset) []NameSexYearTotal {
	type key struct {
		name string
		sex  domain.Sex
		year int
	}
	index := make(map[key]int)
	var out []NameSexYearTotal
	for _, r := range ds {
		k := key{r.Name, r.Sex, r.Year}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, NameSexYearTotal{Name: r.Name, Sex: r.Sex, Year: r.Year})
		}
		out[i].Births += r.Births
	}
	return out
}

// NameTotals sums births per name across all years, restricted to sex when it
// is non-empty. The result is ordered by births descending, then name.
func NameTotals(ds domain.Dataset, sex domain.Sex) []NameTotal {
	totals := make(map[string]int64)
	for _, r := range ds {
		if sex != "" && r.Sex != sex {
			continue
		}
		totals[r.Name] += r.Births
	}

	out := make([]NameTotal, 0, len(totals))
	for name, births := range totals {
		out = append(out, NameTotal{Name: name, Births: births})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Births != out[j].Births {
			return out[i].Births > out[j].Births
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopNames returns at most n entries of NameTotals
func TopNames(ds domain.Dataset, sex domain.Sex, n int) []NameTotal {
	totals := NameTotals(ds, sex)
	if n >= 0 && n < len(totals) {
		totals = totals[:n]
	}
	return totals
}

// YearTotals sums births per year, ascending by year
func YearTotals(ds domain.Dataset) []YearTotal {
	totals := make(map[int]int64)
	for _, r := range ds {
		totals[r.Year] += r.Births
	}

	out := make([]YearTotal, 0, len(totals))
	for year, births := range totals {
		out = append(out, YearTotal{Year: year, Births: births})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
