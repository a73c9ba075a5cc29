package apitest

import (
	"errors"
	"fmt"

	"github.com/commeator/api-test-harness/framework/logging"
	"github.com/commeator/api-test-harness/framework/version"
)

// ErrLoggerConfigFrozen is returned by SetLoggerConfig after the init hook has finished.
var ErrLoggerConfigFrozen = errors.New("logger configuration can only be changed during init")

// FatalError means that the run was aborted before any test executed, because the init hook
// failed.
type FatalError struct {
	Message string
	Err     error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return "fatal: " + e.Message
	}
	return fmt.Sprintf("fatal: %s: %s", e.Message, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// InitContext is what an init hook can see and change.
type InitContext struct {
	gate         version.Gate
	getenv       func(string) string
	loggerConfig logging.Config
	frozen       bool
}

// CheckVersion returns true if the running harness version is at least min. An unparseable
// min is never satisfied.
func (ic *InitContext) CheckVersion(min string) bool {
	ok, err := ic.gate.Check(min)
	return err == nil && ok
}

// Version returns the running harness version.
func (ic *InitContext) Version() string {
	return ic.gate.Version()
}

// Env returns the value of an environment variable, or "" if it is not set.
func (ic *InitContext) Env(name string) string {
	return ic.getenv(name)
}

// LoggerConfig returns a copy of the current logger configuration.
func (ic *InitContext) LoggerConfig() logging.Config {
	return ic.loggerConfig
}

// SetLoggerConfig replaces the logger configuration for the rest of the run.
func (ic *InitContext) SetLoggerConfig(config logging.Config) error {
	if ic.frozen {
		return ErrLoggerConfigFrozen
	}
	ic.loggerConfig = config
	return nil
}

// Fatal aborts the run. It does not return.
func (ic *InitContext) Fatal(msg string) {
	panic(&FatalError{Message: msg})
}

func (ic *InitContext) Fatalf(format string, args ...interface{}) {
	ic.Fatal(fmt.Sprintf(format, args...))
}
