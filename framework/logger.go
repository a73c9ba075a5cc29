package framework

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/commeator/api-test-harness/framework/logging"
)

// Logger is the minimal interface for debug output, such as the request and response traces
// written by httpclient. *log.Logger, *logging.Logger and *CapturingLogger all satisfy it.
type Logger interface {
	Println(args ...interface{})
	Printf(message string, args ...interface{})
}

type discardLogger struct{}

func (discardLogger) Println(...interface{})        {}
func (discardLogger) Printf(string, ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return discardLogger{} }

// CapturedMessage is one line of captured debug output.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// ToString renders the output one message per line, each as prefix + "[HH:MM:SS.mmm] " + message.
func (output CapturedOutput) ToString(prefix string) string {
	var b strings.Builder
	for i, m := range output {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s[%s] %s", prefix, m.Time.Format(logging.DefaultDatetimeFormat), m.Message)
	}
	return b.String()
}

// CapturingLogger holds the debug output of one test scope until the runner decides whether
// to show it.
//
// Scopes run one at a time, so a logger has at most one child attached. While it does, its
// messages are delivered to the child, and through the child to any descendant, so that a
// subtest's output includes whatever its ancestors logged on its behalf.
type CapturingLogger struct {
	lock   sync.Mutex
	output CapturedOutput
	child  *CapturingLogger
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.capture(fmt.Sprintf(message, args...))
}

func (l *CapturingLogger) Println(args ...interface{}) {
	l.capture(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func (l *CapturingLogger) capture(message string) {
	l.deliver(CapturedMessage{Time: time.Now(), Message: message})
}

func (l *CapturingLogger) deliver(m CapturedMessage) {
	l.lock.Lock()
	child := l.child
	if child == nil {
		l.output = append(l.output, m)
	}
	l.lock.Unlock()
	if child != nil {
		child.deliver(m)
	}
}

// Output returns a copy of what has been captured so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append(CapturedOutput(nil), l.output...)
}

// AddChildLogger attaches child, which is given a copy of everything captured here so far.
// Attaching a second child replaces the first.
func (l *CapturingLogger) AddChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	l.child = child
	inherited := append(CapturedOutput(nil), l.output...)
	l.lock.Unlock()

	child.lock.Lock()
	child.output = append(inherited, child.output...)
	child.lock.Unlock()
}

// RemoveChildLogger detaches child, if it is the one attached.
func (l *CapturingLogger) RemoveChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	if l.child == child {
		l.child = nil
	}
	l.lock.Unlock()
}
