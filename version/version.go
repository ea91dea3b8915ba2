// Package version models qBittorrent client and WebAPI version numbers.
//
// Versions gate optional request parameters and endpoint names across API
// revisions. A nil version means "latest": it satisfies every minimum and
// sorts greater than any concrete version.
package version

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

var (
	clientRe = regexp.MustCompile(`^v?(\d+)\.(\d+)(?:\.(\d+)(?:\.(\d+))?)?(alpha|beta|rc)?(\d*)$`)
	apiRe    = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?$`)
)

// statusRank orders pre-release suffixes below a final release.
func statusRank(status string) int {
	switch status {
	case "alpha":
		return 0
	case "beta":
		return 1
	case "rc":
		return 2
	case "":
		return 3
	}
	return -1
}

// ClientVersion is a parsed application version, e.g. "v4.6.2" or
// "4.2.0beta1".
type ClientVersion struct {
	Major     int
	Minor     int
	Patch     int
	Build     int
	Status    string // "", "alpha", "beta" or "rc"
	StatusNum int    // numeric suffix after Status, 0 if none
}

// ParseClient parses a client version string of the form
// "major.minor[.patch[.build]][status]" with an optional leading "v".
func ParseClient(s string) (ClientVersion, error) {
	m := clientRe.FindStringSubmatch(s)
	if m == nil || (m[5] == "" && m[6] != "") {
		return ClientVersion{}, errors.Errorf("malformed client version: %q", s)
	}

	v := ClientVersion{
		Major:  atoi(m[1]),
		Minor:  atoi(m[2]),
		Patch:  atoi(m[3]),
		Build:  atoi(m[4]),
		Status: m[5],
	}
	v.StatusNum = atoi(m[6])
	return v, nil
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

func (v ClientVersion) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Build != 0 {
		s += fmt.Sprintf(".%d", v.Build)
	}
	if v.Status != "" {
		s += v.Status
		if v.StatusNum != 0 {
			s += strconv.Itoa(v.StatusNum)
		}
	}
	return s
}

// Compare orders two client versions. Pre-releases sort below the final
// release of the same number: alpha < beta < rc < release.
func (v ClientVersion) Compare(o ClientVersion) int {
	a := [6]int{v.Major, v.Minor, v.Patch, v.Build, statusRank(v.Status), v.StatusNum}
	b := [6]int{o.Major, o.Minor, o.Patch, o.Build, statusRank(o.Status), o.StatusNum}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// APIVersion is a parsed WebAPI version triple, e.g. "2.8.3".
type APIVersion struct {
	Major   int
	Minor   int
	Release int
}

// ParseAPI parses an API version string of the form "major.minor[.release]".
func ParseAPI(s string) (APIVersion, error) {
	m := apiRe.FindStringSubmatch(s)
	if m == nil {
		return APIVersion{}, errors.Errorf("malformed API version: %q", s)
	}
	return APIVersion{
		Major:   atoi(m[1]),
		Minor:   atoi(m[2]),
		Release: atoi(m[3]),
	}, nil
}

func (v APIVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Release)
}

func (v APIVersion) Compare(o APIVersion) int {
	a := [3]int{v.Major, v.Minor, v.Release}
	b := [3]int{o.Major, o.Minor, o.Release}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// CompareAPI orders two optional API versions. A nil version denotes
// "latest" and sorts greater than any concrete version.
func CompareAPI(a, b *APIVersion) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

// UnsupportedError reports an operation that needs a newer WebAPI version
// than the server offers.
type UnsupportedError struct {
	Version APIVersion
	Minimum APIVersion
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("API version %s is older than the required %s", e.Version, e.Minimum)
}

// Check fails when v is concrete and older than min. A nil version is
// assumed current and always passes.
func Check(v *APIVersion, min APIVersion) error {
	if v == nil || v.Compare(min) >= 0 {
		return nil
	}
	return &UnsupportedError{Version: *v, Minimum: min}
}
