// Package mockservice is an in-process stand-in for the parts of the Commeator API that the
// harness exercises. It is used by the harness's own tests, and by -self-test in main.
package mockservice
