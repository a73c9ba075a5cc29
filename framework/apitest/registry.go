package apitest

import (
	"errors"
	"fmt"

	"github.com/commeator/api-test-harness/framework/helpers"
	"github.com/commeator/api-test-harness/framework/httpclient"
)

// TestFunc is the body of a test case. It receives the test scope and an HTTP client created
// for this test alone. Returning a non-nil error fails the test, as does any failure recorded
// through t.
type TestFunc func(t *T, client *httpclient.Client) error

// TestCase is a named test.
type TestCase struct {
	Name string
	Run  TestFunc
}

// DuplicateTestNameError is returned when a test name is registered twice.
type DuplicateTestNameError struct {
	Name string
}

func (e *DuplicateTestNameError) Error() string {
	return fmt.Sprintf("duplicate test name %q", e.Name)
}

var (
	errEmptyTestName = errors.New("test name must not be empty")
	errNilTestFunc   = errors.New("test function must not be nil")
)

// Registry is an ordered collection of uniquely named test cases.
type Registry struct {
	cases []TestCase
	names map[string]struct{}
}

// Register adds a test case at the end of the registry. It fails, leaving the registry
// unchanged, if the name is empty or already registered.
func (r *Registry) Register(name string, fn TestFunc) error {
	if name == "" {
		return errEmptyTestName
	}
	if fn == nil {
		return fmt.Errorf("%q: %w", name, errNilTestFunc)
	}
	if _, exists := r.names[name]; exists {
		return &DuplicateTestNameError{Name: name}
	}
	if r.names == nil {
		r.names = make(map[string]struct{})
	}
	r.names[name] = struct{}{}
	r.cases = append(r.cases, TestCase{Name: name, Run: fn})
	return nil
}

// All returns the test cases in registration order.
func (r *Registry) All() []TestCase {
	return helpers.CopyOf(r.cases)
}

func (r *Registry) Len() int {
	return len(r.cases)
}
