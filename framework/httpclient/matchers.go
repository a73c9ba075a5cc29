package httpclient

import (
	"encoding/json"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

// StatusCode is a MatcherTransform for the numeric status of a *Response.
func StatusCode() m.MatcherTransform {
	return m.Transform("status code", func(value interface{}) (interface{}, error) {
		return value.(*Response).StatusCode(), nil
	}).EnsureInputValueType(&Response{})
}

// BodyText is a MatcherTransform for the body of a *Response as a string.
func BodyText() m.MatcherTransform {
	return m.Transform("body", func(value interface{}) (interface{}, error) {
		return value.(*Response).Text(), nil
	}).EnsureInputValueType(&Response{})
}

// BodyJSON is a MatcherTransform for the body of a *Response as raw JSON, for use with
// matchers such as m.JSONProperty and m.JSONStrEqual. It fails if the body is not valid JSON.
func BodyJSON() m.MatcherTransform {
	return m.Transform("JSON body", func(value interface{}) (interface{}, error) {
		body := value.(*Response).Body()
		if !json.Valid(body) {
			return nil, errInvalidJSONBody
		}
		return json.RawMessage(body), nil
	}).EnsureInputValueType(&Response{})
}

// HeaderValue is a MatcherTransform for one header of a *Response.
func HeaderValue(name string) m.MatcherTransform {
	return m.Transform("header "+name, func(value interface{}) (interface{}, error) {
		return value.(*Response).Header(name), nil
	}).EnsureInputValueType(&Response{})
}

// HasStatus is a shortcut for StatusCode().Should(m.Equal(code)).
func HasStatus(code int) m.Matcher {
	return StatusCode().Should(m.Equal(code))
}
