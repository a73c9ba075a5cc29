package apitest

import (
	"errors"
	"strings"
	"time"

	"github.com/commeator/api-test-harness/framework"
	"github.com/commeator/api-test-harness/framework/logging"
)

// TestLogger receives status information as tests run. EndLog is called once after the whole
// run, so that file-based reporters can write their output.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
	EndLog(results Results) error
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                        {}
func (n nullTestLogger) TestError(TestID, error)                                   {}
func (n nullTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                                {}
func (n nullTestLogger) EndLog(Results) error                                      { return nil }

// ConsoleTestLogger reports test progress through the leveled logger: test starts and
// passes at Info, failures at Error, skips at Info, and captured debug output if enabled.
type ConsoleTestLogger struct {
	Logger               *logging.Logger
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	c.Logger.Infof("[%s]", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	lines := strings.Split(err.Error(), "\n")
	c.Logger.Errorf("%s: %s", id, lines[0])
	for _, line := range lines[1:] {
		c.Logger.Errorf("  %s", line)
	}
	var es ErrorWithStacktrace
	if errors.As(err, &es) {
		for _, s := range es.Stacktrace {
			c.Logger.Debugf("    at %s", s)
		}
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	failed := !result.Passed()
	if failed {
		c.Logger.Errorf("FAILED: %s", id)
	} else {
		c.Logger.Infof("passed: %s (%s)", id, result.Duration.Round(time.Millisecond))
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		for _, line := range strings.Split(debugOutput.ToString("    DEBUG "), "\n") {
			c.Logger.Infof("%s", line)
		}
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		c.Logger.Infof("SKIPPED: %s", id)
	} else {
		c.Logger.Infof("SKIPPED: %s (%s)", id, reason)
	}
}

// EndLog writes the summary of the run.
func (c ConsoleTestLogger) EndLog(results Results) error {
	if results.OK() {
		c.Logger.Infof("All tests passed (%d)", len(results.Tests))
		return nil
	}
	c.Logger.Errorf("FAILED TESTS (%d of %d):", len(results.Failures), len(results.Tests))
	for _, f := range results.Failures {
		c.Logger.Errorf("  * %s", f.TestID)
	}
	return nil
}

// MultiTestLogger sends every notification to each of its loggers in order.
type MultiTestLogger struct {
	Loggers []TestLogger
}

func (m *MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m.Loggers {
		l.TestStarted(id)
	}
}

func (m *MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m.Loggers {
		l.TestError(id, err)
	}
}

func (m *MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m.Loggers {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m *MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m.Loggers {
		l.TestSkipped(id, reason)
	}
}

// EndLog calls EndLog on every logger, even if some fail, and returns the first error.
func (m *MultiTestLogger) EndLog(results Results) error {
	var firstErr error
	for _, l := range m.Loggers {
		if err := l.EndLog(results); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
