package apitest

import (
	"errors"

	"github.com/commeator/api-test-harness/framework/helpers"
)

// InitFunc is a suite's init hook. It runs once before any test. Returning an error, calling
// InitContext.Fatal, or panicking aborts the run before any test executes.
type InitFunc func(ic *InitContext) error

// Suite is an immutable, validated set of tests plus an optional init hook.
type Suite struct {
	name  string
	init  InitFunc
	tests []TestCase
}

func (s Suite) Name() string { return s.name }

// Tests returns the test cases in registration order.
func (s Suite) Tests() []TestCase { return helpers.CopyOf(s.tests) }

var errInitAlreadyDefined = errors.New("suite already has an init function")

// SuiteBuilder assembles a Suite. Registration errors are kept, and the first one is returned
// by Build; once an error has occurred, further calls have no effect.
type SuiteBuilder struct {
	name     string
	init     InitFunc
	registry Registry
	err      error
}

func NewSuite(name string) *SuiteBuilder {
	return &SuiteBuilder{name: name}
}

// Init sets the init hook. A suite can have at most one.
func (b *SuiteBuilder) Init(fn InitFunc) *SuiteBuilder {
	if b.err != nil {
		return b
	}
	if b.init != nil {
		b.err = errInitAlreadyDefined
		return b
	}
	b.init = fn
	return b
}

// Test registers a test case.
func (b *SuiteBuilder) Test(name string, fn TestFunc) *SuiteBuilder {
	if b.err != nil {
		return b
	}
	b.err = b.registry.Register(name, fn)
	return b
}

// Tests registers several test cases in order.
func (b *SuiteBuilder) Tests(cases ...TestCase) *SuiteBuilder {
	for _, c := range cases {
		b.Test(c.Name, c.Run)
	}
	return b
}

// Err returns the first registration error, if any.
func (b *SuiteBuilder) Err() error {
	return b.err
}

func (b *SuiteBuilder) Build() (Suite, error) {
	if b.err != nil {
		return Suite{}, b.err
	}
	return Suite{name: b.name, init: b.init, tests: b.registry.All()}, nil
}
