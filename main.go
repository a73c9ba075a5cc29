package main

import (
	"bufio"
	_ "embed" // this is required in order for go:embed to work
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/commeator/api-test-harness/apitests"
	"github.com/commeator/api-test-harness/data"
	"github.com/commeator/api-test-harness/framework"
	"github.com/commeator/api-test-harness/framework/apitest"
	"github.com/commeator/api-test-harness/framework/httpclient"
	"github.com/commeator/api-test-harness/mockservice"

	"github.com/alessio/shellescape"
)

const (
	exitTestsFailed = 1
	exitFatal       = 2
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func harnessVersion() string {
	return strings.TrimSpace(versionString)
}

func main() {
	fmt.Printf("commeator-api-test-harness v%s\n", harnessVersion())

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(exitFatal)
	}

	results, err := run(params)
	if err != nil {
		code, alreadyLogged := exitCodeFor(err)
		if !alreadyLogged {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(code)
	}

	if !results.OK() {
		fmt.Println()
		fmt.Println("To run only the failed tests:")
		fmt.Println("  " + rerunCommand(os.Args[0], params, results.FailedIDs()))
		os.Exit(exitTestsFailed)
	}
}

// reportError is a failure to write results after the tests ran.
type reportError struct{ err error }

func (e reportError) Error() string { return e.err.Error() }
func (e reportError) Unwrap() error { return e.err }

// exitCodeFor classifies an error from run. A fatal init error has already been written to the
// console by the runner.
func exitCodeFor(err error) (code int, alreadyLogged bool) {
	var fatal *apitest.FatalError
	var report reportError
	switch {
	case errors.As(err, &fatal):
		return exitFatal, true
	case errors.As(err, &report):
		return exitTestsFailed, false
	default:
		return exitFatal, false
	}
}

func run(params commandParams) (apitest.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return apitest.Results{}, err
		}
	}

	var extraCases []data.CaseDefinition
	if params.suiteFile != "" {
		defs, err := data.LoadCaseFile(params.suiteFile)
		if err != nil {
			return apitest.Results{}, err
		}
		extraCases = defs
	}
	suite, err := apitests.Suite(extraCases...)
	if err != nil {
		return apitest.Results{}, fmt.Errorf("invalid test suite: %w", err)
	}

	if params.selfTest {
		stopStub, stubURL, err := startStubService()
		if err != nil {
			return apitest.Results{}, err
		}
		defer stopStub()
		params.baseURL = stubURL
		fmt.Printf("Running against in-process stub at %s\n", stubURL)
	}

	var reporters []apitest.TestLogger
	if params.jUnitFile != "" {
		reporters = append(reporters, apitest.NewJUnitTestLogger(
			params.jUnitFile,
			suite.Name(),
			map[string]string{"harnessVersion": harnessVersion(), "baseURL": params.baseURL},
			params.filters,
		))
	}
	if params.xlsxFile != "" {
		reporters = append(reporters, apitest.NewXLSXTestLogger(params.xlsxFile))
	}

	config := apitest.RunConfiguration{
		Filter:               params.filters,
		Output:               os.Stdout,
		HarnessVersion:       harnessVersion(),
		NewClient:            clientFactory(params),
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if len(reporters) != 0 {
		config.TestLogger = &apitest.MultiTestLogger{Loggers: reporters}
	}

	results, err := apitest.RunSuite(suite, config)
	if err != nil {
		var fatal *apitest.FatalError
		if errors.As(err, &fatal) {
			return results, err
		}
		return results, reportError{err}
	}

	if params.recordFailures != "" {
		if err := recordFailures(params.recordFailures, results); err != nil {
			return results, reportError{err}
		}
	}
	return results, nil
}

func clientFactory(params commandParams) apitest.ClientFactory {
	return func(debugLogger framework.Logger) (*httpclient.Client, error) {
		return httpclient.New(
			httpclient.BaseURL(params.baseURL),
			httpclient.Timeout(params.timeout),
			httpclient.FollowRedirects(!params.noFollowRedirects),
			httpclient.DefaultHeaders(httpclient.Headers(params.headers)),
			httpclient.DebugLogger(debugLogger),
		)
	}
}

func startStubService() (func(), string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", fmt.Errorf("cannot start stub service: %w", err)
	}
	secret := []byte(fmt.Sprintf("self-test-%d", time.Now().UnixNano()))
	server := &http.Server{
		Handler:           mockservice.NewService(secret, nil),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = server.Serve(listener) }()
	return func() { _ = server.Close() }, "http://" + listener.Addr().String(), nil
}

func recordFailures(path string, results apitest.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create failures file: %w", err)
	}
	for _, id := range results.FailedIDs() {
		fmt.Fprintln(f, id)
	}
	return f.Close()
}

// rerunCommand builds a shell command line that runs only the specified tests, with the same
// target and request options.
func rerunCommand(program string, params commandParams, failed []apitest.TestID) string {
	args := []string{program}
	if params.selfTest {
		args = append(args, "-self-test")
	} else if params.baseURL != defaultBaseURL {
		args = append(args, "-url", params.baseURL)
	}
	if params.suiteFile != "" {
		args = append(args, "-suite-file", params.suiteFile)
	}
	if params.timeout != httpclient.DefaultTimeout {
		args = append(args, "-timeout", params.timeout.String())
	}
	for _, h := range params.headers.sorted() {
		args = append(args, "-header", h)
	}
	if params.noFollowRedirects {
		args = append(args, "-no-follow-redirects")
	}
	for _, id := range failed {
		args = append(args, "-run", apitest.ExactTestIDPattern(id).String())
	}
	return shellescape.QuoteCommand(args)
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %w", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// each line is a test ID as written by -record-failures, matched exactly
		params.filters.MustNotMatch = append(params.filters.MustNotMatch,
			apitest.ExactTestIDPattern(strings.Split(line, "/")))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %w", err)
	}
	return nil
}
