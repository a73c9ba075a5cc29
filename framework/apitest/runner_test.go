package apitest

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commeator/api-test-harness/framework"
	"github.com/commeator/api-test-harness/framework/httpclient"
	"github.com/commeator/api-test-harness/framework/logging"
	o "github.com/commeator/api-test-harness/framework/opt"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHarnessVersion = "2.0.4"

type runnerFixture struct {
	out    bytes.Buffer
	env    map[string]string
	config RunConfiguration
}

func newRunnerFixture(server *httptest.Server) *runnerFixture {
	f := &runnerFixture{env: map[string]string{}}
	f.config = RunConfiguration{
		Output:         &f.out,
		Getenv:         func(name string) string { return f.env[name] },
		HarnessVersion: testHarnessVersion,
		LoggerConfig:   o.Some(logging.Config{Level: logging.Info, UseColors: false}),
	}
	if server != nil {
		f.config.NewClient = func(debugLogger framework.Logger) (*httpclient.Client, error) {
			return httpclient.New(httpclient.BaseURL(server.URL), httpclient.DebugLogger(debugLogger))
		}
	}
	return f
}

func (f *runnerFixture) run(t *testing.T, b *SuiteBuilder) (Results, error) {
	suite, err := b.Build()
	require.NoError(t, err)
	return RunSuite(suite, f.config)
}

func healthTest(t *T, client *httpclient.Client) error {
	resp, err := client.Get(client.URL("/health"), nil)
	if err != nil {
		return err
	}
	m.In(t).Assert(resp, httpclient.HasStatus(200))
	return nil
}

func TestRunSuiteAllPass(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		f := newRunnerFixture(server)
		results, err := f.run(t, NewSuite("s").Test("health", healthTest))
		require.NoError(t, err)
		assert.True(t, results.OK())
		require.Len(t, results.Tests, 1)
		assert.Equal(t, TestID{"health"}, results.Tests[0].TestID)
		assert.NotContains(t, f.out.String(), "[ERROR]")
		assert.Contains(t, f.out.String(), "All tests passed (1)")
	})
}

func TestRunSuiteServerErrorFailsTest(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		f := newRunnerFixture(server)
		results, err := f.run(t, NewSuite("s").Test("health", healthTest))
		require.NoError(t, err)
		assert.False(t, results.OK())
		require.Len(t, results.Failures, 1)
		assert.Contains(t, results.Failures[0].Message(), "status code")
		assert.Contains(t, results.Failures[0].Message(), "500")
		assert.Contains(t, f.out.String(), "[ERROR] health: ")
		assert.Contains(t, f.out.String(), "[ERROR] FAILED: health")
	})
}

func TestRunSuiteRunsTestsInOrderAndIndependently(t *testing.T) {
	var order []string
	var clients []*httpclient.Client
	record := func(name string, err error) TestFunc {
		return func(t *T, client *httpclient.Client) error {
			order = append(order, name)
			clients = append(clients, client)
			return err
		}
	}
	f := newRunnerFixture(nil)
	results, err := f.run(t, NewSuite("s").
		Test("first", record("first", nil)).
		Test("second", record("second", errors.New("expected true, got false"))).
		Test("third", func(t *T, client *httpclient.Client) error {
			order = append(order, "third")
			panic("unexpected")
		}).
		Test("fourth", record("fourth", nil)))

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, order)
	assert.Len(t, results.Tests, 4)
	assert.Equal(t, []TestID{{"second"}, {"third"}}, results.FailedIDs())
	assert.Equal(t, "expected true, got false", results.Failures[0].Message())

	require.Len(t, clients, 3)
	assert.NotSame(t, clients[0], clients[1])
	assert.NotSame(t, clients[1], clients[2])
}

func TestRunSuiteVersionGateFatal(t *testing.T) {
	testRan := false
	f := newRunnerFixture(nil)
	results, err := f.run(t, NewSuite("s").
		Init(func(ic *InitContext) error {
			if !ic.CheckVersion("9.9.9") {
				ic.Fatalf("This suite requires harness version 9.9.9 or later, but this is %s", ic.Version())
			}
			return nil
		}).
		Test("a", func(*T, *httpclient.Client) error {
			testRan = true
			return nil
		}))

	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Message, "but this is 2.0.4")
	assert.False(t, testRan)
	assert.Len(t, results.Tests, 0)
	assert.Contains(t, f.out.String(), "[ERROR] fatal: This suite requires")
}

func TestRunSuiteVersionGatePasses(t *testing.T) {
	f := newRunnerFixture(nil)
	results, err := f.run(t, NewSuite("s").
		Init(func(ic *InitContext) error {
			if !ic.CheckVersion("2.0.4") {
				ic.Fatal("too old")
			}
			return nil
		}).
		Test("a", noopTest))
	require.NoError(t, err)
	assert.Len(t, results.Tests, 1)
}

func TestRunSuiteInitErrorIsFatal(t *testing.T) {
	cause := errors.New("no config")
	f := newRunnerFixture(nil)
	_, err := f.run(t, NewSuite("s").
		Init(func(*InitContext) error { return cause }).
		Test("a", noopTest))
	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, cause)
}

func TestRunSuiteInitPanicIsFatal(t *testing.T) {
	f := newRunnerFixture(nil)
	results, err := f.run(t, NewSuite("s").
		Init(func(*InitContext) error { panic("oops") }).
		Test("a", noopTest))
	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "oops")
	assert.Len(t, results.Tests, 0)
}

func debugLineSuite() *SuiteBuilder {
	return NewSuite("s").
		Init(func(ic *InitContext) error {
			config := ic.LoggerConfig()
			config.Level = logging.LevelFromEnv(ic.Env(logging.EnvVarName))
			return ic.SetLoggerConfig(config)
		}).
		Test("a", func(t *T, _ *httpclient.Client) error {
			t.Logger().Debugf("a debug line")
			return nil
		})
}

func TestRunSuiteLogEnvDebugShowsDebugLines(t *testing.T) {
	f := newRunnerFixture(nil)
	f.env["LOG"] = "DEBUG"
	_, err := f.run(t, debugLineSuite())
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "[DEBUG] a debug line")
}

func TestRunSuiteLogEnvUnsetSuppressesDebugLines(t *testing.T) {
	f := newRunnerFixture(nil)
	_, err := f.run(t, debugLineSuite())
	require.NoError(t, err)
	assert.NotContains(t, f.out.String(), "[DEBUG]")
	assert.Contains(t, f.out.String(), "[INFO]")
}

func TestRunSuiteLoggerConfigIsFrozenAfterInit(t *testing.T) {
	var saved *InitContext
	var setErr error
	f := newRunnerFixture(nil)
	_, err := f.run(t, NewSuite("s").
		Init(func(ic *InitContext) error {
			saved = ic
			return nil
		}).
		Test("a", func(*T, *httpclient.Client) error {
			setErr = saved.SetLoggerConfig(logging.DefaultConfig())
			return nil
		}))
	require.NoError(t, err)
	assert.Equal(t, ErrLoggerConfigFrozen, setErr)
}

func TestRunSuiteAppliesFilter(t *testing.T) {
	var ran []string
	fn := func(name string) TestFunc {
		return func(*T, *httpclient.Client) error {
			ran = append(ran, name)
			return nil
		}
	}
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("^verify_jwt$"))

	f := newRunnerFixture(nil)
	f.config.Filter = filters
	results, err := f.run(t, NewSuite("s").Test("verify_jwt", fn("verify_jwt")).Test("get_my_user", fn("get_my_user")))
	require.NoError(t, err)
	assert.Equal(t, []string{"get_my_user"}, ran)
	assert.Len(t, results.Tests, 1)
	assert.Contains(t, f.out.String(), "SKIPPED: verify_jwt")
}

func TestRunSuiteSendsEventsToTestLogger(t *testing.T) {
	reporter := &recordingTestLogger{}
	f := newRunnerFixture(nil)
	f.config.TestLogger = reporter
	_, err := f.run(t, NewSuite("s").
		Test("a", noopTest).
		Test("b", func(*T, *httpclient.Client) error { return errors.New("bad") }))
	require.NoError(t, err)
	assert.Equal(t, []TestID{{"a"}, {"b"}}, reporter.started)
	assert.Equal(t, []string{"b: bad"}, reporter.errors)
	assert.True(t, reporter.ended)
}

func TestRunSuiteReturnsReportError(t *testing.T) {
	f := newRunnerFixture(nil)
	f.config.TestLogger = &recordingTestLogger{endErr: errors.New("disk full")}
	results, err := f.run(t, NewSuite("s").Test("a", noopTest))
	assert.Error(t, err)
	assert.True(t, results.OK())
}

func TestRunSuiteClientFactoryError(t *testing.T) {
	f := newRunnerFixture(nil)
	f.config.NewClient = func(framework.Logger) (*httpclient.Client, error) {
		return nil, errors.New("bad base URL")
	}
	results, err := f.run(t, NewSuite("s").Test("a", noopTest))
	require.NoError(t, err)
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Message(), "bad base URL")
}

func TestRunSuiteDebugOutputOnFailure(t *testing.T) {
	httphelpers.WithServer(http.NotFoundHandler(), func(server *httptest.Server) {
		f := newRunnerFixture(server)
		f.config.DebugOutputOnFailure = true
		_, err := f.run(t, NewSuite("s").Test("health", healthTest))
		require.NoError(t, err)
		assert.Contains(t, f.out.String(), "DEBUG [")
		assert.Contains(t, f.out.String(), "Request: GET "+server.URL+"/health")
	})
}
