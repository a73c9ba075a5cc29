package data

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/commeator/api-test-harness/framework/opt"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// BundledCasesPath is the directory under data/data-files that holds the cases that are always
// part of the Commeator suite.
const BundledCasesPath = "commeator"

// CaseDefinition is a test case described by a data file instead of Go code. A file holds either
// one definition at the top level, or a list of them under "cases".
type CaseDefinition struct {
	Name    string      `json:"name"`
	Request CaseRequest `json:"request"`
	Expect  CaseExpect  `json:"expect"`

	// Source is the file (and parameter set, if any) the definition came from.
	Source string `json:"-"`
}

// CaseRequest is the request a declarative case sends. Path is resolved against the base URL
// unless it is already absolute. Body is sent verbatim; JSON, if not null, is serialized and sent
// with a JSON content type. Setting both is an error.
type CaseRequest struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
	JSON    ldvalue.Value     `json:"json"`
}

// CaseExpect lists the checks made against the response. Only Status is always checked.
type CaseExpect struct {
	Status     opt.Maybe[int]           `json:"status"`
	Body       opt.Maybe[string]        `json:"body"`
	JSON       ldvalue.Value            `json:"json"`
	Properties map[string]ldvalue.Value `json:"properties"`
	Headers    map[string]string        `json:"headers"`
}

// ExpectedStatus is the declared status, or 200 if none was declared.
func (e CaseExpect) ExpectedStatus() int {
	return e.Status.OrElse(http.StatusOK)
}

// RequestMethod is the declared method in upper case, or GET.
func (r CaseRequest) RequestMethod() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// RequestBody returns the bytes to send, and the content type implied by the definition ("" if
// none).
func (r CaseRequest) RequestBody() ([]byte, string) {
	if !r.JSON.IsNull() {
		return []byte(r.JSON.JSONString()), "application/json"
	}
	if r.Body == "" {
		return nil, ""
	}
	return []byte(r.Body), ""
}

// Validate checks that the definition can be turned into a test.
func (c CaseDefinition) Validate() error {
	if c.Name == "" {
		return errors.New("case has no name")
	}
	if c.Request.Path == "" {
		return fmt.Errorf("case %q has no request path", c.Name)
	}
	if !strings.HasPrefix(c.Request.Path, "/") && !strings.Contains(c.Request.Path, "://") {
		return fmt.Errorf("case %q: path %q must start with / or be an absolute URL", c.Name, c.Request.Path)
	}
	if c.Request.Body != "" && !c.Request.JSON.IsNull() {
		return fmt.Errorf("case %q sets both body and json", c.Name)
	}
	if status := c.Expect.ExpectedStatus(); status < 100 || status > 599 {
		return fmt.Errorf("case %q expects invalid status %d", c.Name, status)
	}
	return nil
}

// ParseCases reads the case definitions out of one expanded data file.
func (s SourceInfo) ParseCases() ([]CaseDefinition, error) {
	var file struct {
		Cases []CaseDefinition `json:"cases"`
	}
	if err := s.ParseInto(&file); err != nil {
		return nil, err
	}
	defs := file.Cases
	if len(defs) == 0 {
		var single CaseDefinition
		if err := s.ParseInto(&single); err != nil {
			return nil, err
		}
		defs = []CaseDefinition{single}
	}
	source := s.FilePath
	if params := s.ParamsString(); params != "" {
		source += " " + params
	}
	for i := range defs {
		defs[i].Source = source
		if err := defs[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	}
	return defs, nil
}

// ParseAllCases flattens the definitions of several expanded files, keeping file order.
func ParseAllCases(sources []SourceInfo) ([]CaseDefinition, error) {
	var ret []CaseDefinition
	for _, s := range sources {
		defs, err := s.ParseCases()
		if err != nil {
			return nil, err
		}
		ret = append(ret, defs...)
	}
	return ret, nil
}

// LoadBundledCases returns the cases embedded in the harness binary.
func LoadBundledCases() ([]CaseDefinition, error) {
	sources, err := LoadAllDataFiles(BundledCasesPath)
	if err != nil {
		return nil, err
	}
	return ParseAllCases(sources)
}

// LoadCaseFile returns the cases in a file on the local filesystem.
func LoadCaseFile(path string) ([]CaseDefinition, error) {
	sources, err := LoadExternalFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAllCases(sources)
}
