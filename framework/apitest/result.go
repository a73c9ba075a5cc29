package apitest

import (
	"strings"
	"time"
)

// Results is the outcome of a test run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

// TestResult is the outcome of one test scope. A test passed if and only if Errors is empty.
type TestResult struct {
	TestID   TestID
	Errors   []error
	Duration time.Duration
}

// OK returns true if no test failed.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// FailedIDs returns the IDs of the failed tests in the order they finished.
func (r Results) FailedIDs() []TestID {
	ret := make([]TestID, 0, len(r.Failures))
	for _, f := range r.Failures {
		ret = append(ret, f.TestID)
	}
	return ret
}

func (r TestResult) Passed() bool {
	return len(r.Errors) == 0
}

// Message joins the failure messages, or returns "" for a passed test.
func (r TestResult) Message() string {
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		messages = append(messages, e.Error())
	}
	return strings.Join(messages, "\n")
}

// TestID is the path of a test scope: the test name followed by any subtest names.
type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}
