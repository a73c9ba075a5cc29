// Package apitests contains the Commeator API test suite: the init hook, the tests written in
// Go, and the glue that turns declarative case files into tests.
package apitests
