// Package internal contains helpers for the apitest unit tests that must live outside the
// apitest package, so that stacktrace filtering can tell them apart.
package internal

// TestingT is the part of apitest.T that the assertion helpers use.
type TestingT interface {
	Helper()
	Errorf(format string, args ...interface{})
}

// RunAction calls action.
func RunAction(action func()) {
	action()
}

// AssertStatus is an assertion helper that marks itself with Helper.
func AssertStatus(t TestingT, want, got int) {
	t.Helper()
	if want != got {
		t.Errorf("expected status %d, got %d", want, got)
	}
}

// CheckStatus is the same assertion without the Helper mark.
func CheckStatus(t TestingT, want, got int) {
	if want != got {
		t.Errorf("expected status %d, got %d", want, got)
	}
}
