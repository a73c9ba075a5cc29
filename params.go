package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/commeator/api-test-harness/framework/apitest"
	"github.com/commeator/api-test-harness/framework/helpers"
	"github.com/commeator/api-test-harness/framework/httpclient"

	"golang.org/x/exp/maps"
)

const defaultBaseURL = "http://localhost:3000"

type commandParams struct {
	baseURL           string
	filters           apitest.RegexFilters
	skipFile          string
	recordFailures    string
	debug             bool
	debugAll          bool
	jUnitFile         string
	xlsxFile          string
	suiteFile         string
	timeout           time.Duration
	headers           headerList
	noFollowRedirects bool
	selfTest          bool
}

// headerList collects repeated -header "Name: value" flags.
type headerList httpclient.Headers

func (h headerList) String() string {
	return strings.Join(h.sorted(), ", ")
}

func (h headerList) sorted() []string {
	parts := make([]string, 0, len(h))
	for _, k := range helpers.Sorted(maps.Keys(h)) {
		parts = append(parts, k+": "+h[k])
	}
	return parts
}

func (h *headerList) Set(value string) error {
	name, v, ok := strings.Cut(value, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("header must be in the form \"Name: value\", got %q", value)
	}
	if *h == nil {
		*h = make(headerList)
	}
	(*h)[name] = strings.TrimSpace(v)
	return nil
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.baseURL, "url", defaultBaseURL, "base URL of the Commeator API")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.skipFile, "skip-from", "", "file with test IDs to skip, one per line")
	fs.StringVar(&c.recordFailures, "record-failures", "", "write the IDs of failed tests to this file")
	fs.BoolVar(&c.debug, "debug", false, "show debug output for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show debug output for all tests")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.xlsxFile, "xlsx", "", "write an Excel report to the specified path")
	fs.StringVar(&c.suiteFile, "suite-file", "", "YAML or JSON file with additional test cases")
	fs.DurationVar(&c.timeout, "timeout", httpclient.DefaultTimeout, "timeout for each HTTP request")
	fs.Var(&c.headers, "header", "default header for every request, as \"Name: value\" (repeatable)")
	fs.BoolVar(&c.noFollowRedirects, "no-follow-redirects", false, "return 3xx responses instead of following them")
	fs.BoolVar(&c.selfTest, "self-test", false, "run against an in-process stub of the API instead of -url")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if u, err := url.Parse(c.baseURL); err != nil || !u.IsAbs() || u.Host == "" {
		fmt.Fprintf(os.Stderr, "-url must be an absolute URL, got %q\n", c.baseURL)
		fs.Usage()
		return false
	}
	if c.timeout <= 0 {
		fmt.Fprintln(os.Stderr, "-timeout must be positive")
		fs.Usage()
		return false
	}
	return true
}
