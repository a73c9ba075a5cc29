package helpers

import (
	"errors"
	"fmt"
	"strings"
)

// TestRecorder stands in for a *testing.T and only records failures. It is used in unit tests of
// assertion helpers, to verify that an assertion fails without failing the real test. It
// satisfies both require.TestingT and the go-test-helpers matchers' test interface.
type TestRecorder struct {
	Errors     []string
	Terminated bool

	// PanicOnTerminate makes FailNow panic, so that code after a failed Require is not reached.
	PanicOnTerminate bool
}

func (t *TestRecorder) Errorf(msgFormat string, msgArgs ...interface{}) {
	t.Errors = append(t.Errors, fmt.Sprintf(msgFormat, msgArgs...))
}

func (t *TestRecorder) FailNow() {
	t.Terminated = true
	if t.PanicOnTerminate {
		panic(t)
	}
}

// Err returns all recorded failures as one error, or nil if there were none.
func (t *TestRecorder) Err() error {
	if len(t.Errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(t.Errors, ", "))
}
