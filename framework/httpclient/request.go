package httpclient

import (
	"net/http"
	"strings"

	"github.com/commeator/api-test-harness/framework/helpers"

	"github.com/alessio/shellescape"
	"golang.org/x/exp/maps"
)

// Headers is an optional set of request headers. Names are case-insensitive.
type Headers map[string]string

// Request describes a single HTTP request. Body is sent exactly as given; nil means no body.
type Request struct {
	Method  string
	URL     string
	Headers Headers
	Body    []byte
}

// mergeHeaders applies overrides on top of defaults. If overrides has two spellings of the same
// name, they are applied in byte order of the keys, so "content-type" wins over "Content-Type".
func mergeHeaders(defaults http.Header, overrides Headers) http.Header {
	ret := defaults.Clone()
	if ret == nil {
		ret = make(http.Header)
	}
	for _, name := range helpers.Sorted(maps.Keys(overrides)) {
		ret.Set(name, overrides[name])
	}
	return ret
}

// CurlCommand renders an equivalent curl command line, quoted for a POSIX shell. This is
// useful in failure output so that a request can be reproduced by hand.
func (r Request) CurlCommand() string {
	return curlCommand(r.Method, r.URL, http.Header(nil), r.Headers, r.Body)
}

func curlCommand(method, url string, defaults http.Header, headers Headers, body []byte) string {
	merged := mergeHeaders(defaults, headers)
	parts := []string{"curl", "-X", shellescape.Quote(strings.ToUpper(method))}
	for _, name := range helpers.Sorted(maps.Keys(merged)) {
		for _, value := range merged[name] {
			parts = append(parts, "-H", shellescape.Quote(name+": "+value))
		}
	}
	if body != nil {
		parts = append(parts, "--data-raw", shellescape.Quote(string(body)))
	}
	parts = append(parts, shellescape.Quote(url))
	return strings.Join(parts, " ")
}
