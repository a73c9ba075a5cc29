package apitest

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/commeator/api-test-harness/framework"
	"github.com/commeator/api-test-harness/framework/logging"
)

// TestConfiguration contains options for Run.
type TestConfiguration struct {
	// Filter decides which tests run. If nil, all tests run.
	Filter Filter

	// TestLogger is notified as tests start and finish.
	TestLogger TestLogger

	// Logger is returned by T.Logger. If nil, output is discarded.
	Logger *logging.Logger
}

// run holds the state shared by every scope of one call to Run.
type run struct {
	config  TestConfiguration
	results Results
}

// T is the scope of a single test, in the manner of testing.T. It implements the interfaces
// that testify and the go-test-helpers matchers expect, so assertions can be made against it
// directly.
//
// A failed assertion made with a "require" style helper calls FailNow, which unwinds the test
// with a panic that Run recovers.
type T struct {
	run         *run
	id          TestID
	debugLogger framework.CapturingLogger
	errors      []error
	failed      bool
	skipReason  string
	skipped     bool
	cleanups    []func()
	helperFns   []string
}

// abort is the panic value used by FailNow and Skip.
type abort struct{ t *T }

// Run executes action in a root scope and returns the results of every test that it started
// with T.Run. The root scope is not itself a test.
func Run(config TestConfiguration, action func(*T)) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	if config.Logger == nil {
		config.Logger = logging.NewLogger(logging.DefaultConfig(), io.Discard)
	}
	root := &T{run: &run{config: config}}
	root.execute(action)
	return root.run.results
}

// Run starts a subtest. It returns when the subtest has finished, whether it passed, failed or
// was skipped. A subtest that the filter excludes is reported as skipped and not run.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)
	reporter := t.run.config.TestLogger

	reporter.TestStarted(id)
	if f := t.run.config.Filter; f != nil && !f.Match(id) {
		reporter.TestSkipped(id, "excluded by filter parameters")
		return
	}

	sub := &T{run: t.run, id: id}
	t.debugLogger.AddChildLogger(&sub.debugLogger)
	result := sub.execute(action)
	t.debugLogger.RemoveChildLogger(&sub.debugLogger)

	if sub.skipped {
		reporter.TestSkipped(id, sub.skipReason)
		return
	}
	reporter.TestFinished(id, result, sub.debugLogger.Output())
}

func (t *T) execute(action func(*T)) TestResult {
	started := time.Now()
	t.invoke(action)
	t.runCleanups()

	result := TestResult{TestID: t.id, Errors: t.errors, Duration: time.Since(started)}
	if len(t.id) != 0 && !t.skipped {
		t.run.results.Tests = append(t.run.results.Tests, result)
		if t.failed {
			t.run.results.Failures = append(t.run.results.Failures, result)
		}
	}
	return result
}

// invoke calls action, turning an abort or any other panic into the test's outcome.
func (t *T) invoke(action func(*T)) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(abort); ok {
			if t.failed && len(t.errors) == 0 {
				t.recordError(errors.New("test failed with no failure message"))
			}
			return
		}
		t.recordError(fmt.Errorf("unexpected panic in test: %+v\n%s", r, debug.Stack()))
	}()
	action(t)
}

func (t *T) runCleanups() {
	for len(t.cleanups) != 0 {
		last := len(t.cleanups) - 1
		fn := t.cleanups[last]
		t.cleanups = t.cleanups[:last]
		fn()
	}
}

// ID returns the full path of the test.
func (t *T) ID() TestID {
	return t.id
}

// Name returns the last component of the ID, or "" for the root scope.
func (t *T) Name() string {
	if len(t.id) == 0 {
		return ""
	}
	return t.id[len(t.id)-1]
}

// Errorf records a failure, with the location of the calling test code, and lets the test
// continue. Assertion libraries call it; tests rarely need to.
func (t *T) Errorf(format string, args ...interface{}) {
	t.recordError(newAssertionFailure(fmt.Errorf(format, args...), callerStack(false, t.helperFns)))
}

// Fail records err as a failure, without location information. A nil error is ignored.
func (t *T) Fail(err error) {
	if err != nil {
		t.recordError(err)
	}
}

func (t *T) recordError(err error) {
	t.failed = true
	t.errors = append(t.errors, err)
	t.run.config.TestLogger.TestError(t.id, err)
}

func (t *T) Failed() bool {
	return t.failed
}

// FailNow marks the test as failed and stops it.
func (t *T) FailNow() {
	t.failed = true
	panic(abort{t})
}

// Skip stops the test and reports it as skipped. Failures recorded before the call are
// discarded.
func (t *T) Skip() {
	t.skipped = true
	panic(abort{t})
}

func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug writes to the test's captured output.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns the logger whose output is captured for this test. The runner passes it
// to the test's HTTP client, and shows the captured lines if the test fails and -debug is set.
//
// A subtest starts with a copy of its parent's output so far, and while it runs, anything
// logged to the parent goes to the subtest as well.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Logger returns the run's leveled console logger.
func (t *T) Logger() *logging.Logger {
	return t.run.config.Logger
}

// Defer registers a function to call when the test ends, in last-in-first-out order. It runs
// even if the test fails or is skipped.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}

// Helper excludes the calling function from failure locations, like testing.T.Helper.
func (t *T) Helper() {
	pcs := make([]uintptr, 1)
	if runtime.Callers(2, pcs) == 0 {
		return
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	t.helperFns = append(t.helperFns, frame.Function)
}
