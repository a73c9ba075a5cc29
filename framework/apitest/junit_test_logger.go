package apitest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/commeator/api-test-harness/framework"
	"github.com/commeator/api-test-harness/framework/helpers"
	o "github.com/commeator/api-test-harness/framework/opt"
)

// JUnitTestLogger collects results as tests run and writes them as JUnit XML in EndLog. Each
// top-level test becomes a testsuite element containing itself and its subtests, so that CI
// tools which group by suite show one entry per API scenario.
type JUnitTestLogger struct {
	filePath   string
	suiteName  string
	properties []junitProperty
	records    []*junitRecord
	byID       map[string]*junitRecord
	lock       sync.Mutex
}

type junitRecord struct {
	id       TestID
	errors   []error
	skipped  o.Maybe[string]
	output   string
	duration time.Duration
}

// The element layout follows what go-junit-report produces.
type (
	junitReport struct {
		XMLName xml.Name     `xml:"testsuites"`
		Suites  []junitSuite `xml:"testsuite"`
	}

	junitSuite struct {
		Name       string          `xml:"name,attr"`
		Tests      int             `xml:"tests,attr"`
		Failures   int             `xml:"failures,attr"`
		Skipped    int             `xml:"skipped,attr"`
		Time       string          `xml:"time,attr"`
		Properties []junitProperty `xml:"properties>property,omitempty"`
		Cases      []junitCase     `xml:"testcase"`
	}

	junitCase struct {
		Classname string        `xml:"classname,attr"`
		Name      string        `xml:"name,attr"`
		Time      string        `xml:"time,attr"`
		Skipped   *junitSkip    `xml:"skipped,omitempty"`
		Failure   *junitFailure `xml:"failure,omitempty"`
	}

	junitSkip struct {
		Message string `xml:"message,attr"`
	}

	junitFailure struct {
		Message string `xml:"message,attr"`
		Type    string `xml:"type,attr"`
		Output  string `xml:",chardata"`
	}

	junitProperty struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value,attr"`
	}
)

// NewJUnitTestLogger creates a JUnitTestLogger that will write to filePath. Every testsuite
// element carries the given properties, sorted by name, followed by the -run and -skip
// patterns.
func NewJUnitTestLogger(
	filePath string,
	suiteName string,
	properties map[string]string,
	filters RegexFilters,
) *JUnitTestLogger {
	props := make([]junitProperty, 0, len(properties)+2)
	for _, name := range helpers.Sorted(maps.Keys(properties)) {
		props = append(props, junitProperty{name, properties[name]})
	}
	props = append(props,
		junitProperty{"tests.filter.mustMatch", filters.MustMatch.String()},
		junitProperty{"tests.filter.mustNotMatch", filters.MustNotMatch.String()},
	)
	return &JUnitTestLogger{
		filePath:   filePath,
		suiteName:  suiteName,
		properties: props,
		byID:       make(map[string]*junitRecord),
	}
}

func (j *JUnitTestLogger) FilePath() string {
	return j.filePath
}

// record returns the entry for id, creating it in run order if necessary. The caller holds the
// lock.
func (j *JUnitTestLogger) record(id TestID) *junitRecord {
	key := id.String()
	r, ok := j.byID[key]
	if !ok {
		r = &junitRecord{id: id}
		j.byID[key] = r
		j.records = append(j.records, r)
	}
	return r
}

func (j *JUnitTestLogger) TestStarted(id TestID) {
	j.lock.Lock()
	j.record(id)
	j.lock.Unlock()
}

func (j *JUnitTestLogger) TestError(id TestID, err error) {
	j.lock.Lock()
	r := j.record(id)
	r.errors = append(r.errors, err)
	j.lock.Unlock()
}

func (j *JUnitTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	j.lock.Lock()
	r := j.record(id)
	r.duration = result.Duration
	r.output = debugOutput.ToString("")
	j.lock.Unlock()
}

func (j *JUnitTestLogger) TestSkipped(id TestID, reason string) {
	j.lock.Lock()
	j.record(id).skipped = o.Some(reason)
	j.lock.Unlock()
}

// EndLog writes the report. The results argument is not needed, since everything was already
// collected from the other callbacks.
func (j *JUnitTestLogger) EndLog(Results) error {
	j.lock.Lock()
	report := j.buildReport()
	j.lock.Unlock()

	data, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), append(data, '\n')...)
	return os.WriteFile(j.filePath, data, 0644) //nolint:gosec
}

func (j *JUnitTestLogger) buildReport() junitReport {
	var report junitReport
	suiteIndex := make(map[string]int)
	suiteDurations := make(map[string]time.Duration)

	for _, r := range j.records {
		if len(r.id) == 0 {
			continue
		}
		top := r.id[0]
		i, ok := suiteIndex[top]
		if !ok {
			i = len(report.Suites)
			suiteIndex[top] = i
			report.Suites = append(report.Suites, junitSuite{
				Name:       j.suiteName + ": " + top,
				Properties: j.properties,
			})
		}
		suite := &report.Suites[i]

		c := junitCase{Classname: j.suiteName, Name: r.id.String(), Time: junitSeconds(r.duration)}
		if r.skipped.IsDefined() {
			c.Skipped = &junitSkip{Message: r.skipped.Value()}
			suite.Skipped++
		}
		if len(r.errors) != 0 {
			c.Failure = &junitFailure{Message: junitFailureMessage(r.errors), Output: r.output}
			suite.Failures++
		}
		suite.Tests++
		suite.Cases = append(suite.Cases, c)
		suiteDurations[top] += r.duration
	}

	for top, i := range suiteIndex {
		report.Suites[i].Time = junitSeconds(suiteDurations[top])
	}
	return report
}

func junitFailureMessage(errs []error) string {
	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(err.Error())
		var es ErrorWithStacktrace
		if errors.As(err, &es) && len(es.Stacktrace) != 0 {
			b.WriteString("\n  Stacktrace:")
			for _, frame := range es.Stacktrace {
				b.WriteString("\n    " + frame.String())
			}
		}
	}
	return b.String()
}

func junitSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
