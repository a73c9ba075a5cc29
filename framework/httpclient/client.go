package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/commeator/api-test-harness/framework"
)

// Client sends requests to the service under test. A Client has no mutable state after
// construction other than the connection pool of its transport.
type Client struct {
	config clientConfig
	http   *http.Client
}

// New creates a Client.
func New(options ...Option) (*Client, error) {
	config := clientConfig{
		defaultHeaders:  make(http.Header),
		timeout:         DefaultTimeout,
		followRedirects: true,
		debugLogger:     framework.NullLogger(),
	}
	for _, o := range options {
		if err := o.Configure(&config); err != nil {
			return nil, err
		}
	}
	hc := &http.Client{
		Timeout:   config.timeout,
		Transport: config.transport,
	}
	if !config.followRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Client{config: config, http: hc}, nil
}

// URL resolves a path such as "/users/me" against the base URL. An absolute URL is returned
// unchanged. Without a base URL, the input is returned unchanged.
func (c *Client) URL(path string) string {
	if c.config.baseURL == nil {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil || ref.IsAbs() {
		return path
	}
	base := *c.config.baseURL
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
	base.RawPath = ""
	base.RawQuery = ref.RawQuery
	base.Fragment = ref.Fragment
	return base.String()
}

// Timeout returns the limit that applies to each request.
func (c *Client) Timeout() time.Duration {
	return c.config.timeout
}

func (c *Client) Get(url string, headers Headers) (*Response, error) {
	return c.Do(Request{Method: http.MethodGet, URL: url, Headers: headers})
}

func (c *Client) Post(url string, body []byte, headers Headers) (*Response, error) {
	return c.Do(Request{Method: http.MethodPost, URL: url, Headers: headers, Body: body})
}

func (c *Client) Put(url string, body []byte, headers Headers) (*Response, error) {
	return c.Do(Request{Method: http.MethodPut, URL: url, Headers: headers, Body: body})
}

func (c *Client) Patch(url string, body []byte, headers Headers) (*Response, error) {
	return c.Do(Request{Method: http.MethodPatch, URL: url, Headers: headers, Body: body})
}

func (c *Client) Delete(url string, headers Headers) (*Response, error) {
	return c.Do(Request{Method: http.MethodDelete, URL: url, Headers: headers})
}

func (c *Client) Head(url string, headers Headers) (*Response, error) {
	return c.Do(Request{Method: http.MethodHead, URL: url, Headers: headers})
}

// Do sends a request with any method.
func (c *Client) Do(req Request) (*Response, error) {
	return c.DoWithContext(context.Background(), req)
}

// DoWithContext is Do with a context that can cancel the request before the timeout expires.
func (c *Client) DoWithContext(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, req.URL)
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}
	hr.Header = mergeHeaders(c.config.defaultHeaders, req.Headers)

	sent := Request{Method: method, URL: req.URL, Headers: flattenHeaders(hr.Header), Body: req.Body}
	c.config.debugLogger.Printf("Request: %s %s", method, req.URL)

	start := time.Now()
	hresp, err := c.http.Do(hr)
	if err != nil {
		c.config.debugLogger.Printf("Request failed: %s", err)
		return nil, &TransportError{Method: method, URL: req.URL, Err: unwrapURLError(err)}
	}
	defer func() { _ = hresp.Body.Close() }()
	data, err := io.ReadAll(hresp.Body)
	if err != nil {
		c.config.debugLogger.Printf("Failed to read response body: %s", err)
		return nil, &TransportError{Method: method, URL: req.URL, Err: err}
	}
	resp := &Response{
		request:    sent,
		status:     hresp.Status,
		statusCode: hresp.StatusCode,
		header:     hresp.Header.Clone(),
		body:       data,
		duration:   time.Since(start),
	}
	c.config.debugLogger.Printf("Response: %s (%d bytes) in %s", hresp.Status, len(data), resp.duration)
	return resp, nil
}

// CurlCommand renders a curl command line for the request as this client would send it,
// including default headers.
func (c *Client) CurlCommand(req Request) string {
	return curlCommand(req.Method, req.URL, c.config.defaultHeaders, req.Headers, req.Body)
}

func flattenHeaders(h http.Header) Headers {
	ret := make(Headers, len(h))
	for name := range h {
		ret[name] = h.Get(name)
	}
	return ret
}

// net/http wraps every failure in a *url.Error that repeats the method and URL.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}
