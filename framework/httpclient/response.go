package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/commeator/api-test-harness/framework/helpers"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
)

// Response is a fully read HTTP response. It cannot be modified after it is returned: all
// accessors return copies.
type Response struct {
	request    Request
	status     string
	statusCode int
	header     http.Header
	body       []byte
	duration   time.Duration
}

// StatusCode returns the numeric HTTP status, such as 200 or 404.
func (r *Response) StatusCode() int { return r.statusCode }

// Status returns the status line text, such as "200 OK".
func (r *Response) Status() string { return r.status }

// Header returns the first value of a response header, or "" if it is absent.
func (r *Response) Header(name string) string { return r.header.Get(name) }

// Headers returns a copy of all response headers.
func (r *Response) Headers() http.Header { return r.header.Clone() }

// Body returns a copy of the raw response body.
func (r *Response) Body() []byte { return append([]byte(nil), r.body...) }

// Text returns the response body as a string.
func (r *Response) Text() string { return string(r.body) }

// JSON decodes the response body into target.
func (r *Response) JSON(target interface{}) error {
	if err := json.Unmarshal(r.body, target); err != nil {
		return fmt.Errorf("response body is not valid JSON for %T: %w", target, err)
	}
	return nil
}

// Value parses the response body as arbitrary JSON. If the body is not valid JSON, the result
// is ldvalue.Null().
func (r *Response) Value() ldvalue.Value { return ldvalue.Parse(r.body) }

// Duration is the time from sending the request until the body was fully read.
func (r *Response) Duration() time.Duration { return r.duration }

// Request returns the request that produced this response, with default headers merged in.
func (r *Response) Request() Request {
	ret := r.request
	ret.Headers = make(Headers, len(r.request.Headers))
	for k, v := range r.request.Headers {
		ret.Headers[k] = v
	}
	ret.Body = append([]byte(nil), r.request.Body...)
	return ret
}

// Dump renders the response for failure output: the request line, the status, the headers in
// sorted order, and the body.
func (r *Response) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", r.request.Method, r.request.URL)
	fmt.Fprintf(&b, "HTTP %s\n", r.statusLine())
	for _, name := range helpers.Sorted(maps.Keys(r.header)) {
		for _, value := range r.header[name] {
			fmt.Fprintf(&b, "%s: %s\n", name, value)
		}
	}
	b.WriteString("\n")
	b.Write(r.body)
	return b.String()
}

func (r *Response) String() string { return r.Dump() }

func (r *Response) statusLine() string {
	if r.status != "" {
		return r.status
	}
	return fmt.Sprintf("%d %s", r.statusCode, http.StatusText(r.statusCode))
}
