package apitests

import (
	"github.com/commeator/api-test-harness/data"
	"github.com/commeator/api-test-harness/framework/apitest"
	"github.com/commeator/api-test-harness/framework/logging"
)

const (
	// SuiteName is the name reported for the Commeator suite.
	SuiteName = "commeator"

	// MinimumHarnessVersion is the oldest harness version that can run this suite.
	MinimumHarnessVersion = "2.0.4"
)

// NewSuiteBuilder returns a builder with the init hook and the Go tests registered, so that
// callers can add more tests before building.
func NewSuiteBuilder() *apitest.SuiteBuilder {
	return apitest.NewSuite(SuiteName).
		Init(initSuite).
		Test("health", testHealth).
		Test("verify_jwt", testVerifyJWT).
		Test("get_my_user", testGetMyUser)
}

// Suite builds the full suite: the Go tests, then the bundled case files, then extraCases in
// the order given.
func Suite(extraCases ...data.CaseDefinition) (apitest.Suite, error) {
	bundled, err := data.LoadBundledCases()
	if err != nil {
		return apitest.Suite{}, err
	}
	b := NewSuiteBuilder()
	RegisterDeclarative(b, bundled)
	RegisterDeclarative(b, extraCases)
	return b.Build()
}

func initSuite(ic *apitest.InitContext) error {
	if !ic.CheckVersion(MinimumHarnessVersion) {
		ic.Fatalf("This version of the harness is not compatible with this suite: %s", ic.Version())
	}

	config := ic.LoggerConfig()
	config.Level = logging.LevelFromEnv(ic.Env(logging.EnvVarName))
	config.DatetimeFormat = logging.DefaultDatetimeFormat
	config.UseColors = true
	return ic.SetLoggerConfig(config)
}
