package apitest

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJUnitReport(t *testing.T, path string) junitReport {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report junitReport
	require.NoError(t, xml.Unmarshal(data, &report))
	return report
}

func TestJUnitTestLoggerWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("slow"))
	j := NewJUnitTestLogger(path, "Commeator API tests", map[string]string{"harness.version": "2.0.4"}, filters)
	assert.Equal(t, path, j.FilePath())

	health := TestID{"health"}
	jwt := TestID{"verify_jwt"}
	slow := TestID{"slow"}

	j.TestStarted(health)
	j.TestFinished(health, TestResult{TestID: health, Duration: 12 * time.Millisecond}, nil)
	j.TestStarted(jwt)
	j.TestError(jwt, ErrorWithStacktrace{
		Message:    "expected body true",
		Stacktrace: []StacktraceInfo{{FileName: "suite.go", Package: modulePath + "/apitests", Function: "verifyJWT", Line: 7}},
	})
	j.TestFinished(jwt, TestResult{TestID: jwt, Errors: []error{errors.New("x")}}, nil)
	j.TestStarted(slow)
	j.TestSkipped(slow, "excluded by filter parameters")
	require.NoError(t, j.EndLog(Results{}))

	report := readJUnitReport(t, path)
	require.Len(t, report.Suites, 3)

	healthSuite := report.Suites[0]
	assert.Equal(t, "Commeator API tests: health", healthSuite.Name)
	assert.Equal(t, 1, healthSuite.Tests)
	assert.Equal(t, 0, healthSuite.Failures)
	assert.Equal(t, "0.012", healthSuite.Cases[0].Time)
	assert.Equal(t, []junitProperty{
		{"harness.version", "2.0.4"},
		{"tests.filter.mustMatch", ""},
		{"tests.filter.mustNotMatch", `"slow"`},
	}, healthSuite.Properties)

	jwtSuite := report.Suites[1]
	assert.Equal(t, 1, jwtSuite.Failures)
	require.NotNil(t, jwtSuite.Cases[0].Failure)
	assert.Equal(t, "expected body true\n  Stacktrace:\n    apitests.verifyJWT (suite.go:7)",
		jwtSuite.Cases[0].Failure.Message)

	slowSuite := report.Suites[2]
	assert.Equal(t, 1, slowSuite.Skipped)
	require.NotNil(t, slowSuite.Cases[0].Skipped)
	assert.Equal(t, "excluded by filter parameters", slowSuite.Cases[0].Skipped.Message)
}

func TestJUnitTestLoggerGroupsSubtestsUnderTopLevelTest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	j := NewJUnitTestLogger(path, "s", nil, RegexFilters{})

	_ = Run(TestConfiguration{TestLogger: j}, func(at *T) {
		at.Run("get_my_user", func(at *T) {
			at.Run("create", func(*T) {})
			at.Run("fetch", func(at *T) { at.Errorf("nickname mismatch") })
		})
		at.Run("health", func(*T) {})
	})
	require.NoError(t, j.EndLog(Results{}))

	report := readJUnitReport(t, path)
	require.Len(t, report.Suites, 2)

	var names []string
	for _, c := range report.Suites[0].Cases {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"get_my_user", "get_my_user/create", "get_my_user/fetch"}, names)
	assert.Equal(t, 3, report.Suites[0].Tests)
	assert.Equal(t, 1, report.Suites[0].Failures)
	assert.Equal(t, "nickname mismatch", report.Suites[0].Cases[2].Failure.Message[:len("nickname mismatch")])
	assert.Equal(t, "s: health", report.Suites[1].Name)
}

func TestJUnitTestLoggerWriteError(t *testing.T) {
	j := NewJUnitTestLogger(filepath.Join(t.TempDir(), "missing", "junit.xml"), "s", nil, RegexFilters{})
	assert.Error(t, j.EndLog(Results{}))
}
