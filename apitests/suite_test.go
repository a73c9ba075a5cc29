package apitests

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commeator/api-test-harness/framework"
	"github.com/commeator/api-test-harness/framework/apitest"
	"github.com/commeator/api-test-harness/framework/httpclient"
	"github.com/commeator/api-test-harness/mockservice"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suiteFixture struct {
	out    bytes.Buffer
	env    map[string]string
	config apitest.RunConfiguration
}

func newSuiteFixture(serverURL string) *suiteFixture {
	f := &suiteFixture{env: map[string]string{}}
	f.config = apitest.RunConfiguration{
		Output:         &f.out,
		Getenv:         func(name string) string { return f.env[name] },
		HarnessVersion: MinimumHarnessVersion,
		NewClient: func(debugLogger framework.Logger) (*httpclient.Client, error) {
			return httpclient.New(httpclient.BaseURL(serverURL), httpclient.DebugLogger(debugLogger))
		},
		DebugOutputOnFailure: true,
	}
	return f
}

func withStub(t *testing.T, action func(*mockservice.Service, *suiteFixture)) {
	service := mockservice.NewService([]byte("suite-test-secret"), nil)
	httphelpers.WithServer(service, func(server *httptest.Server) {
		action(service, newSuiteFixture(server.URL))
	})
}

func runFullSuite(t *testing.T, f *suiteFixture) (apitest.Results, error) {
	suite, err := Suite()
	require.NoError(t, err)
	return apitest.RunSuite(suite, f.config)
}

func resultFor(t *testing.T, results apitest.Results, name string) apitest.TestResult {
	for _, r := range results.Tests {
		if r.TestID.String() == name {
			return r
		}
	}
	require.Fail(t, "no result for test", name)
	return apitest.TestResult{}
}

func TestSuiteOrder(t *testing.T) {
	suite, err := Suite()
	require.NoError(t, err)
	var names []string
	for _, tc := range suite.Tests() {
		names = append(names, tc.Name)
	}
	require.True(t, len(names) > 3)
	assert.Equal(t, []string{"health", "verify_jwt", "get_my_user"}, names[:3])
	assert.Equal(t, SuiteName, suite.Name())
}

func TestSuitePassesAgainstStub(t *testing.T) {
	withStub(t, func(service *mockservice.Service, f *suiteFixture) {
		results, err := runFullSuite(t, f)
		require.NoError(t, err)
		assert.True(t, results.OK(), f.out.String())
		assert.Len(t, results.Tests, len(mustSuite(t).Tests()))
		assert.Contains(t, f.out.String(), "JWT verification succeeded")
		assert.Contains(t, f.out.String(), "User info matches")
		assert.Len(t, service.Users(), 2)
	})
}

func TestSuiteHealthFailure(t *testing.T) {
	withStub(t, func(service *mockservice.Service, f *suiteFixture) {
		service.SetHealthStatus(http.StatusInternalServerError)

		results, err := runFullSuite(t, f)
		require.NoError(t, err)
		assert.False(t, results.OK())
		require.Len(t, results.Failures, 1)
		assert.Equal(t, "health", results.Failures[0].TestID.String())
		assert.True(t, resultFor(t, results, "verify_jwt").Passed())
		assert.Contains(t, f.out.String(), "FAILED: health")
	})
}

func TestSuiteRejectsOldHarness(t *testing.T) {
	withStub(t, func(service *mockservice.Service, f *suiteFixture) {
		f.config.HarnessVersion = "2.0.3"

		results, err := runFullSuite(t, f)
		var fe *apitest.FatalError
		require.True(t, errors.As(err, &fe))
		assert.Contains(t, fe.Message, "not compatible")
		assert.Contains(t, fe.Message, "2.0.3")
		assert.Len(t, results.Tests, 0)
		assert.Len(t, service.Users(), 0)
	})
}

func TestSuiteAcceptsPrereleaseOfNewerVersion(t *testing.T) {
	withStub(t, func(_ *mockservice.Service, f *suiteFixture) {
		f.config.HarnessVersion = "2.1.0-beta.1"
		results, err := runFullSuite(t, f)
		require.NoError(t, err)
		assert.True(t, results.OK())
	})
}

func TestSuiteLogLevelFromEnv(t *testing.T) {
	withStub(t, func(_ *mockservice.Service, f *suiteFixture) {
		f.env["LOG"] = "DEBUG"
		_, err := runFullSuite(t, f)
		require.NoError(t, err)
		assert.Contains(t, f.out.String(), "[DEBUG]")
	})

	withStub(t, func(_ *mockservice.Service, f *suiteFixture) {
		f.env["LOG"] = "debug"
		_, err := runFullSuite(t, f)
		require.NoError(t, err)
		assert.NotContains(t, f.out.String(), "[DEBUG]")
	})
}

func TestSuiteUsesColors(t *testing.T) {
	withStub(t, func(_ *mockservice.Service, f *suiteFixture) {
		_, err := runFullSuite(t, f)
		require.NoError(t, err)
		assert.Contains(t, f.out.String(), "\x1b[")
	})
}

func TestVerifyJWTFailureIncludesResponseDump(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc(DebugUserPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Broken", "yes")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("database unavailable"))
	})
	httphelpers.WithServer(router, func(server *httptest.Server) {
		f := newSuiteFixture(server.URL)
		suite, err := apitest.NewSuite("broken").Test("verify_jwt", testVerifyJWT).Build()
		require.NoError(t, err)

		results, err := apitest.RunSuite(suite, f.config)
		require.NoError(t, err)
		require.Len(t, results.Failures, 1)
		message := results.Failures[0].Message()
		assert.Contains(t, message, "Failed to create user")
		assert.Contains(t, message, "POST "+server.URL+DebugUserPath)
		assert.Contains(t, message, "HTTP 500")
		assert.Contains(t, message, "X-Broken: yes")
		assert.Contains(t, message, "database unavailable")
	})
}

func TestGetMyUserDetectsMismatch(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc(DebugUserPath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"token"`))
	})
	router.HandleFunc(UsersMePath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"uuid": "x", "username": "testuser", "nickname": "Someone",
			"email": "testuser@commeator.org-1"}`))
	})
	httphelpers.WithServer(router, func(server *httptest.Server) {
		f := newSuiteFixture(server.URL)
		suite, err := apitest.NewSuite("mismatch").Test("get_my_user", testGetMyUser).Build()
		require.NoError(t, err)

		results, err := apitest.RunSuite(suite, f.config)
		require.NoError(t, err)
		require.Len(t, results.Failures, 1)
		assert.Contains(t, results.Failures[0].Message(), "Nickname does not match")
	})
}

func TestUserInfoEmailAddress(t *testing.T) {
	assert.Equal(t, "a@b.org", UserInfo{Email: "a@b.org-123"}.EmailAddress())
	assert.Equal(t, "a@b.org", UserInfo{Email: "a@b.org"}.EmailAddress())
}

func mustSuite(t *testing.T) apitest.Suite {
	suite, err := Suite()
	require.NoError(t, err)
	return suite
}
