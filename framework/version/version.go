// Package version implements the version gate that a suite's init hook uses to refuse to run
// under a harness older than it was written for.
package version

import (
	"fmt"
	"strings"

	"github.com/launchdarkly/go-semver"
)

// Parse parses a version string. Missing minor and patch components are treated as zero, so
// "2" and "2.0" are both equivalent to "2.0.0". A leading "v" is ignored.
func Parse(s string) (semver.Version, error) {
	v, err := semver.ParseAs(strings.TrimPrefix(strings.TrimSpace(s), "v"), semver.ParseModeAllowMissingMinorAndPatch)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return v, nil
}

// AtLeast returns true if the running version is greater than or equal to the minimum.
//
// Versions are compared by major, then minor, then patch. A pre-release version is lower than
// the release with the same numbers, so "2.0.4-beta.1" does not satisfy a minimum of "2.0.4".
// Pre-release tags are not compared with each other: "2.0.4-alpha" satisfies "2.0.4-beta".
// Build metadata is ignored.
func AtLeast(running, minimum string) (bool, error) {
	rv, err := Parse(running)
	if err != nil {
		return false, err
	}
	mv, err := Parse(minimum)
	if err != nil {
		return false, err
	}
	return compare(rv, mv) >= 0, nil
}

func compare(a, b semver.Version) int {
	for _, d := range []int{
		a.GetMajor() - b.GetMajor(),
		a.GetMinor() - b.GetMinor(),
		a.GetPatch() - b.GetPatch(),
		releaseRank(a) - releaseRank(b),
	} {
		if d != 0 {
			return d
		}
	}
	return 0
}

func releaseRank(v semver.Version) int {
	if v.GetPrerelease() != "" {
		return 0
	}
	return 1
}

// Gate answers version checks for one running version.
type Gate struct {
	running string
}

// NewGate creates a Gate for the running harness version.
func NewGate(running string) Gate {
	return Gate{running: strings.TrimSpace(running)}
}

// Version returns the running version string.
func (g Gate) Version() string {
	return g.running
}

// Check returns true if the running version is at least the minimum. If either version cannot
// be parsed, the check is not satisfied and the parse error is returned.
func (g Gate) Check(minimum string) (bool, error) {
	return AtLeast(g.running, minimum)
}
