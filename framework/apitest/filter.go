package apitest

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/commeator/api-test-harness/framework/logging"
)

// Filter decides whether a test runs. A test that does not match is reported as skipped.
type Filter interface {
	Match(id TestID) bool
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(TestID) bool

func (f FilterFunc) Match(id TestID) bool { return f(id) }

// RegexFilters holds the -run and -skip patterns.
//
// A test is selected if no MustMatch pattern was given or one of them matches it, and none of
// the MustNotMatch patterns match it. A MustMatch pattern also selects the parents of the
// tests it names, since a subtest can only run inside its parent; a MustNotMatch pattern
// excludes everything below the tests it names.
type RegexFilters struct {
	MustMatch    TestIDPatternList
	MustNotMatch TestIDPatternList
}

func (r RegexFilters) Match(id TestID) bool {
	if r.MustNotMatch.AnyMatch(id, false) {
		return false
	}
	return !r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id, true)
}

// TestIDPattern matches a TestID one path component at a time. The pattern "a/b" has two
// regexes; the first is applied to the top-level test name and the second to the subtest name.
// Each regex is unanchored, as with "go test -run".
type TestIDPattern []*regexp.Regexp

// Match reports whether the leading components of id match the pattern. If id has fewer
// components than the pattern, it matches only if includeParents is set and every component
// it does have matches.
func (p TestIDPattern) Match(id TestID, includeParents bool) bool {
	if len(id) < len(p) && !includeParents {
		return false
	}
	for i, name := range id {
		if i == len(p) {
			break
		}
		if !p[i].MatchString(name) {
			return false
		}
	}
	return true
}

func (p TestIDPattern) String() string {
	parts := make([]string, len(p))
	for i, rx := range p {
		parts[i] = rx.String()
	}
	return strings.Join(parts, "/")
}

// ParseTestIDPattern compiles each slash-separated component of s.
func ParseTestIDPattern(s string) (TestIDPattern, error) {
	var p TestIDPattern
	for _, part := range strings.Split(s, "/") {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", part, err)
		}
		p = append(p, rx)
	}
	return p, nil
}

// ExactTestIDPattern matches id and its subtests, and nothing else.
func ExactTestIDPattern(id TestID) TestIDPattern {
	p := make(TestIDPattern, len(id))
	for i, name := range id {
		p[i] = regexp.MustCompile("^" + regexp.QuoteMeta(name) + "$")
	}
	return p
}

// TestIDPatternList is a repeatable command-line flag value.
type TestIDPatternList []TestIDPattern

func (l TestIDPatternList) String() string {
	quoted := make([]string, len(l))
	for i, p := range l {
		quoted[i] = fmt.Sprintf(`"%s"`, p)
	}
	return strings.Join(quoted, " or ")
}

// Set implements flag.Value.
func (l *TestIDPatternList) Set(value string) error {
	p, err := ParseTestIDPattern(value)
	if err == nil {
		*l = append(*l, p)
	}
	return err
}

func (l TestIDPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l TestIDPatternList) AnyMatch(id TestID, includeParents bool) bool {
	return slices.ContainsFunc(l, func(p TestIDPattern) bool { return p.Match(id, includeParents) })
}

// LogFilterDescription logs the -run and -skip patterns in effect, if any.
func LogFilterDescription(logger *logging.Logger, filters RegexFilters) {
	if filters.MustMatch.IsDefined() {
		logger.Infof("running only tests matching %s", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		logger.Infof("skipping tests matching %s", filters.MustNotMatch)
	}
}
