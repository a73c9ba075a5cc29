package apitests

import (
	"net/http"
	"strings"

	"github.com/commeator/api-test-harness/data"
	"github.com/commeator/api-test-harness/framework/apitest"
	"github.com/commeator/api-test-harness/framework/helpers"
	"github.com/commeator/api-test-harness/framework/httpclient"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"golang.org/x/exp/maps"
)

// RegisterDeclarative adds a test for each case definition. A name that is already taken makes
// the builder fail with a *apitest.DuplicateTestNameError, like any other registration.
func RegisterDeclarative(b *apitest.SuiteBuilder, defs []data.CaseDefinition) {
	for _, def := range defs {
		b.Test(def.Name, DeclarativeTest(def))
	}
}

// DeclarativeTest returns a test that sends the case's request and checks the response against
// its expectations.
func DeclarativeTest(def data.CaseDefinition) apitest.TestFunc {
	return func(t *apitest.T, client *httpclient.Client) error {
		t.Debug("case %q from %s", def.Name, def.Source)

		resp, err := client.Do(declarativeRequest(client, def.Request))
		if err != nil {
			return err
		}
		m.In(t).Assert(resp, declarativeMatcher(def.Expect))
		return nil
	}
}

func declarativeRequest(client *httpclient.Client, r data.CaseRequest) httpclient.Request {
	url := r.Path
	if strings.HasPrefix(url, "/") {
		url = client.URL(url)
	}
	// keys are canonicalised so that a case file's header replaces the implied content type
	// whatever its spelling
	headers := make(httpclient.Headers, len(r.Headers)+1)
	body, contentType := r.RequestBody()
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	for _, name := range helpers.Sorted(maps.Keys(r.Headers)) {
		headers[http.CanonicalHeaderKey(name)] = r.Headers[name]
	}
	return httpclient.Request{
		Method:  r.RequestMethod(),
		URL:     url,
		Headers: headers,
		Body:    body,
	}
}

func declarativeMatcher(e data.CaseExpect) m.Matcher {
	matchers := []m.Matcher{httpclient.HasStatus(e.ExpectedStatus())}
	if e.Body.IsDefined() {
		matchers = append(matchers, httpclient.BodyText().Should(m.Equal(e.Body.Value())))
	}
	if !e.JSON.IsNull() {
		matchers = append(matchers, httpclient.BodyJSON().Should(m.JSONStrEqual(e.JSON.JSONString())))
	}
	for _, name := range helpers.Sorted(maps.Keys(e.Properties)) {
		matchers = append(matchers, httpclient.BodyJSON().Should(
			m.JSONProperty(name).Should(m.JSONStrEqual(e.Properties[name].JSONString()))))
	}
	for _, name := range helpers.Sorted(maps.Keys(e.Headers)) {
		matchers = append(matchers, httpclient.HeaderValue(name).Should(m.Equal(e.Headers[name])))
	}
	return m.AllOf(matchers...)
}
