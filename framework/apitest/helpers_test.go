package apitest

import (
	"github.com/commeator/api-test-harness/framework"
)

type recordingTestLogger struct {
	started    []TestID
	errors     []string
	skipped    []TestID
	onFinished func(id TestID, result TestResult, output []string)
	ended      bool
	endErr     error
}

func (r *recordingTestLogger) TestStarted(id TestID) { r.started = append(r.started, id) }

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.errors = append(r.errors, id.String()+": "+err.Error())
}

func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	if r.onFinished != nil {
		lines := make([]string, 0, len(debugOutput))
		for _, m := range debugOutput {
			lines = append(lines, m.Message)
		}
		r.onFinished(id, result, lines)
	}
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) { r.skipped = append(r.skipped, id) }

func (r *recordingTestLogger) EndLog(Results) error {
	r.ended = true
	return r.endErr
}
