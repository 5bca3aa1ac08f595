package region

import (
	"sort"
	"strconv"
	"strings"

	"sampahkita/pkg/errors"
)

// Year is one of the enumerated report years
type Year int

// SupportedYears lists every year the dashboard serves, oldest first
var SupportedYears = []Year{2020, 2021, 2022, 2023}

// Valid reports whether y is a supported report year
func (y Year) Valid() bool {
	for _, s := range SupportedYears {
		if y == s {
			return true
		}
	}
	return false
}

// String returns the four-digit year
func (y Year) String() string {
	return strconv.Itoa(int(y))
}

// ParseYear validates a user-supplied year at the boundary
func ParseYear(s string) (Year, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.NewValidationError("year", "not a number", s)
	}
	y := Year(n)
	if !y.Valid() {
		return 0, errors.Wrapf(errors.ErrUnsupportedYear, "year %d (supported: %v)", n, SupportedYears)
	}
	return y, nil
}

// Record is one region-year row of the waste management dataset
type Record struct {
	Region   string   `json:"kabupaten"`
	Year     Year     `json:"tahun"`
	Features Features `json:"features"`

	// Coerced lists feature columns whose raw value was missing or
	// non-numeric and was replaced with zero.
	Coerced []string `json:"coerced,omitempty"`
}

// Key returns the normalized region name used for joins and lookups
func (r Record) Key() string {
	return NormalizeName(r.Region)
}

// Incomplete reports whether any feature was coerced to zero
func (r Record) Incomplete() bool {
	return len(r.Coerced) > 0
}

// NormalizeName lower-cases and trims a region name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SortedNames sorts names by normalized name and drops blanks and duplicates.
// The first spelling of a repeated name is kept.
func SortedNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := NormalizeName(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return NormalizeName(out[i]) < NormalizeName(out[j])
	})
	return out
}

// RegionColumn is the text column holding the region name
const RegionColumn = "kabupaten"

// YearColumn is the year column of the concatenated historical dataset
const YearColumn = "tahun"
