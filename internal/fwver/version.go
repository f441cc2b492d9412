// Package fwver models the four-part firmware version scheme
// major.minor.datecode.revision, where datecode encodes the build date as
// the two-digit year followed by the zero-padded day of the year
// (e.g. 26237 for 2026-08-25).
package fwver

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Version is a firmware version. The zero value is "0.0.0.0".
type Version struct {
	Major    int
	Minor    int
	Datecode int
	Revision int
}

// Rule constrains how a version is bumped. Nil fields leave the
// corresponding component unchanged.
type Rule struct {
	PinMajor *int
	PinMinor *int
}

// Datecode returns the date component for t: yy*1000 + day-of-year.
func Datecode(t time.Time) int {
	return (t.Year()%100)*1000 + t.YearDay()
}

// String renders the dotted form, e.g. "1.2.26237.0".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Datecode, v.Revision)
}

// Bump returns the successor of v for the given time. A new datecode resets
// the revision to 0; bumping again under the same datecode increments it.
// rule may pin the major/minor components.
func (v Version) Bump(now time.Time, rule Rule) Version {
	next := Version{
		Major:    v.Major,
		Minor:    v.Minor,
		Datecode: Datecode(now),
	}
	if rule.PinMajor != nil {
		next.Major = *rule.PinMajor
	}
	if rule.PinMinor != nil {
		next.Minor = *rule.PinMinor
	}
	if next.Datecode == v.Datecode {
		next.Revision = v.Revision + 1
	}
	return next
}

// Parse parses the dotted four-part form produced by String.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Version{}, fmt.Errorf("invalid version %q: want major.minor.datecode.revision", s)
	}
	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: component %q is not a non-negative integer", s, p)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Datecode: nums[2], Revision: nums[3]}, nil
}

// Pin returns a pointer to n, for building Rules.
func Pin(n int) *int {
	return &n
}
