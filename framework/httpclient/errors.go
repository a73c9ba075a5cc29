package httpclient

import (
	"errors"
	"fmt"
	"net"
)

// ErrInvalidURL is returned, wrapped, for a request URL that is not absolute.
var ErrInvalidURL = errors.New("request URL must be absolute")

// TransportError means that no HTTP response was obtained: the connection was refused or
// reset, DNS resolution failed, the request timed out, or the response body could not be read.
// A response with an error status is not a TransportError.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout returns true if the underlying failure was a timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// IsTransportError returns true if err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

var errInvalidJSONBody = errors.New("response body is not valid JSON")
