// Package apitest runs suites of HTTP API tests as a regular Go program rather than under
// "go test".
//
// A Suite is an ordered list of named test cases plus an optional init hook. RunSuite runs the
// init hook once, then runs each selected test sequentially in registration order. Every test
// gets its own scope (T), which works with testify and matchers the same way *testing.T does,
// and its own HTTP client. A test fails if it records an assertion failure, returns an error,
// or panics; the remaining tests still run.
package apitest
