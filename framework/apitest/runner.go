package apitest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/commeator/api-test-harness/framework"
	"github.com/commeator/api-test-harness/framework/httpclient"
	"github.com/commeator/api-test-harness/framework/logging"
	o "github.com/commeator/api-test-harness/framework/opt"
	"github.com/commeator/api-test-harness/framework/version"
)

// ClientFactory creates the HTTP client for one test. The debug logger captures that test's
// output.
type ClientFactory func(debugLogger framework.Logger) (*httpclient.Client, error)

// RunConfiguration contains options for RunSuite.
type RunConfiguration struct {
	// Filter is an optional Filter for determining which tests to run.
	Filter Filter

	// TestLogger receives status information about each test, in addition to the console
	// output that RunSuite always writes.
	TestLogger TestLogger

	// Output is where console output goes. The default is os.Stdout.
	Output io.Writer

	// Getenv reads environment variables for the init hook. The default is os.Getenv.
	Getenv func(string) string

	// HarnessVersion is the version that the init hook's version gate compares against.
	HarnessVersion string

	// LoggerConfig is the configuration before the init hook runs. The default is
	// logging.DefaultConfig().
	LoggerConfig o.Maybe[logging.Config]

	// NewClient creates each test's client. The default is a client with no base URL and the
	// default timeout.
	NewClient ClientFactory

	// DebugOutputOnFailure and DebugOutputOnSuccess control whether a test's captured debug
	// output is written to the console.
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

// RunSuite runs the init hook, then every selected test in registration order.
//
// If the init hook fails, no test runs and the returned error is a *FatalError. An error is
// also returned if a TestLogger could not write its report. Results.OK tells whether every
// test passed.
func RunSuite(suite Suite, config RunConfiguration) (Results, error) {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Getenv == nil {
		config.Getenv = os.Getenv
	}
	if config.NewClient == nil {
		config.NewClient = func(debugLogger framework.Logger) (*httpclient.Client, error) {
			return httpclient.New(httpclient.DebugLogger(debugLogger))
		}
	}

	ic := &InitContext{
		gate:         version.NewGate(config.HarnessVersion),
		getenv:       config.Getenv,
		loggerConfig: config.LoggerConfig.OrElse(logging.DefaultConfig()),
	}
	if suite.init != nil {
		if err := runInit(suite.init, ic); err != nil {
			logging.NewLogger(ic.loggerConfig, config.Output).Errorf("%s", err)
			return Results{}, err
		}
	}
	ic.frozen = true

	logger := logging.NewLogger(ic.loggerConfig, config.Output)
	logger.Debugf("suite %q: %d tests, harness version %s", suite.name, len(suite.tests), ic.Version())
	if filters, ok := config.Filter.(RegexFilters); ok {
		LogFilterDescription(logger, filters)
	}

	loggers := []TestLogger{ConsoleTestLogger{
		Logger:               logger,
		DebugOutputOnFailure: config.DebugOutputOnFailure,
		DebugOutputOnSuccess: config.DebugOutputOnSuccess,
	}}
	if config.TestLogger != nil {
		loggers = append(loggers, config.TestLogger)
	}
	testLogger := &MultiTestLogger{Loggers: loggers}

	results := Run(
		TestConfiguration{Filter: config.Filter, TestLogger: testLogger, Logger: logger},
		func(t *T) {
			for _, tc := range suite.tests {
				runTestCase(t, tc, config.NewClient)
			}
		},
	)
	if err := testLogger.EndLog(results); err != nil {
		return results, fmt.Errorf("error writing test report: %w", err)
	}
	return results, nil
}

func runTestCase(t *T, tc TestCase, newClient ClientFactory) {
	t.Run(tc.Name, func(t *T) {
		client, err := newClient(t.DebugLogger())
		if err != nil {
			t.Fail(fmt.Errorf("could not create HTTP client: %w", err))
			return
		}
		t.Fail(tc.Run(t, client))
	})
}

func runInit(fn InitFunc, ic *InitContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*FatalError); ok {
				err = fe
				return
			}
			err = &FatalError{
				Message: "unexpected panic in init",
				Err:     fmt.Errorf("%+v\n%s", r, string(debug.Stack())),
			}
		}
	}()
	if initErr := fn(ic); initErr != nil {
		var fe *FatalError
		if errors.As(initErr, &fe) {
			return fe
		}
		return &FatalError{Message: "init failed", Err: initErr}
	}
	return nil
}
