package apitest

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// ErrorWithStacktrace is an assertion failure together with the call stack of the test code
// that made the assertion. Frames inside this package and functions marked with T.Helper are
// left out.
type ErrorWithStacktrace struct {
	Message    string
	Stacktrace []StacktraceInfo
}

func (e ErrorWithStacktrace) Error() string { return e.Message }

// StacktraceInfo is one frame of an ErrorWithStacktrace.
type StacktraceInfo struct {
	FileName string
	Package  string
	Function string
	Line     int
}

func (s StacktraceInfo) String() string {
	pkg := strings.TrimPrefix(s.Package, modulePath+"/")
	return fmt.Sprintf("%s.%s (%s:%d)", pkg, s.Function, s.FileName, s.Line)
}

const maxStackDepth = 64

var (
	thisPackage = reflect.TypeOf((*T)(nil)).Elem().PkgPath()
	modulePath  = moduleOf(thisPackage)

	// testify starts its messages with its own trace, which is replaced by ours
	testifyPreamble = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`)
)

func newAssertionFailure(err error, stack []StacktraceInfo) error {
	message := err.Error()
	if strings.Contains(message, "Error Trace:") {
		message = strings.TrimSpace(testifyPreamble.ReplaceAllLiteralString(message, ""))
	}
	if len(stack) == 0 {
		return errors.New(message)
	}
	return ErrorWithStacktrace{Message: message, Stacktrace: stack}
}

// callerStack walks up from its caller until it reaches the entry point of the current test
// scope. Unless includeFramework is set, frames in this package are skipped, as are the
// functions named in helpers.
func callerStack(includeFramework bool, helpers []string) []StacktraceInfo {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2, pcs) // skip runtime.Callers and callerStack
	frames := runtime.CallersFrames(pcs[:n])

	var ret []StacktraceInfo
	for {
		frame, more := frames.Next()
		pkg, fn := splitFunctionName(frame.Function)
		if pkg == thisPackage && fn == "Run" {
			break
		}
		if (includeFramework || pkg != thisPackage) && !isHelper(frame.Function, helpers) && frame.Function != "" {
			ret = append(ret, StacktraceInfo{
				FileName: filepath.Base(frame.File),
				Package:  pkg,
				Function: fn,
				Line:     frame.Line,
			})
		}
		if !more {
			break
		}
	}
	return ret
}

func isHelper(function string, helpers []string) bool {
	for _, h := range helpers {
		if h == function {
			return true
		}
	}
	return false
}

// splitFunctionName separates "example.com/a/pkg.(*T).method" into "example.com/a/pkg" and
// "(*T).method".
func splitFunctionName(fullName string) (string, string) {
	lastSlash := strings.LastIndex(fullName, "/")
	dot := strings.Index(fullName[lastSlash+1:], ".")
	if dot < 0 {
		return fullName, ""
	}
	cut := lastSlash + 1 + dot
	return fullName[:cut], fullName[cut+1:]
}

func moduleOf(pkg string) string {
	parts := strings.SplitN(pkg, "/", 4)
	if len(parts) < 3 {
		return pkg
	}
	return strings.Join(parts[:3], "/")
}
