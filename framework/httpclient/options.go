package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/commeator/api-test-harness/framework"
)

// DefaultTimeout applies to every request unless the Timeout option is used.
const DefaultTimeout = 10 * time.Second

// Option is the interface for options that can be passed to New.
type Option interface {
	Configure(*clientConfig) error
}

type clientConfig struct {
	baseURL         *url.URL
	defaultHeaders  http.Header
	timeout         time.Duration
	followRedirects bool
	transport       http.RoundTripper
	debugLogger     framework.Logger
}

type optionFunc func(*clientConfig) error

func (f optionFunc) Configure(c *clientConfig) error { return f(c) }

// BaseURL sets the URL that Client.URL resolves paths against.
func BaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("invalid base URL %q: %w", baseURL, ErrInvalidURL)
		}
		c.baseURL = u
		return nil
	})
}

// DefaultHeader adds a header that is sent with every request unless the request specifies
// its own value for the same header.
func DefaultHeader(name, value string) Option {
	return optionFunc(func(c *clientConfig) error {
		c.defaultHeaders.Set(name, value)
		return nil
	})
}

// DefaultHeaders is equivalent to calling DefaultHeader for each entry.
func DefaultHeaders(headers Headers) Option {
	return optionFunc(func(c *clientConfig) error {
		for name, value := range headers {
			c.defaultHeaders.Set(name, value)
		}
		return nil
	})
}

// BearerToken sends "Authorization: Bearer <token>" with every request.
func BearerToken(token string) Option {
	return DefaultHeader("Authorization", "Bearer "+token)
}

// Timeout sets the limit for an entire request, including reading the response body.
func Timeout(timeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		c.timeout = timeout
		return nil
	})
}

// FollowRedirects controls whether 3xx responses with a Location are followed. It is true by
// default; with false, the 3xx response itself is returned.
func FollowRedirects(follow bool) Option {
	return optionFunc(func(c *clientConfig) error {
		c.followRedirects = follow
		return nil
	})
}

// Transport replaces the underlying http.RoundTripper.
func Transport(transport http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) error {
		c.transport = transport
		return nil
	})
}

// DebugLogger sets a logger that receives one line for each request and each response.
func DebugLogger(logger framework.Logger) Option {
	return optionFunc(func(c *clientConfig) error {
		c.debugLogger = logger
		return nil
	})
}
