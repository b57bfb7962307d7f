package lock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FirstVersion is assigned to the first lock under a label.
const FirstVersion = "1.0"

// Sentinel version selectors accepted by read and delete operations.
const (
	VersionLatest = "latest"
	VersionAll    = "all"
)

var versionRE = regexp.MustCompile(`^\d+\.\d+$`)

// ValidVersion reports whether s matches the "major.minor" shape.
func ValidVersion(s string) bool {
	return versionRE.MatchString(s)
}

// ParseVersion splits a "major.minor" version string.
func ParseVersion(s string) (major, minor int, err error) {
	if !ValidVersion(s) {
		return 0, 0, fmt.Errorf("invalid version %q: must match major.minor (e.g. \"1.0\")", s)
	}
	parts := strings.SplitN(s, ".", 2)
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid version %q: %w", s, err)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return major, minor, nil
}

// BumpMinor returns the next version after s: major stays, minor + 1.
func BumpMinor(s string) (string, error) {
	major, minor, err := ParseVersion(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", major, minor+1), nil
}

// CompareVersions orders two versions by (major, minor).
// Returns -1 if a < b, 0 if equal, 1 if a > b.
// Malformed versions sort before well-formed ones.
func CompareVersions(a, b string) int {
	am, an, aerr := ParseVersion(a)
	bm, bn, berr := ParseVersion(b)
	if aerr != nil || berr != nil {
		switch {
		case aerr != nil && berr != nil:
			return strings.Compare(a, b)
		case aerr != nil:
			return -1
		default:
			return 1
		}
	}
	if am != bm {
		if am < bm {
			return -1
		}
		return 1
	}
	if an != bn {
		if an < bn {
			return -1
		}
		return 1
	}
	return 0
}
