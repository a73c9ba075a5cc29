// Package httpclient is the HTTP client that test cases use to talk to the service under test.
//
// It differs from a bare net/http client in a few ways that matter for testing: 4xx and 5xx
// responses are ordinary results that tests assert on, while failures to get any response at
// all are reported as *TransportError; bodies are sent exactly as given; responses are fully
// read and immutable; and nothing is ever retried.
package httpclient
