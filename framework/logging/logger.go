package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var levelColors = map[Level][]color.Attribute{ //nolint:gochecknoglobals
	Trace: {color.Faint},
	Debug: {color.Faint, color.FgBlue},
	Info:  {color.FgGreen},
	Warn:  {color.FgYellow},
	Error: {color.FgRed},
}

// Logger writes leveled, timestamped lines in the form "[<time>] [<LEVEL>] <message>".
//
// Its configuration is fixed at construction time.
type Logger struct {
	config Config
	out    io.Writer
	now    func() time.Time
	colors map[Level]*color.Color
	lock   sync.Mutex
}

// NewLogger creates a Logger that writes to the specified destination.
func NewLogger(config Config, out io.Writer) *Logger {
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = DefaultDatetimeFormat
	}
	l := &Logger{config: config, out: out, now: time.Now}
	if config.UseColors {
		l.colors = make(map[Level]*color.Color, len(levelColors))
		for level, attrs := range levelColors {
			c := color.New(attrs...)
			c.EnableColor()
			l.colors[level] = c
		}
	}
	return l
}

// Config returns a copy of the configuration this logger was created with.
func (l *Logger) Config() Config {
	return l.config
}

// Enabled returns true if messages at the specified level would be emitted.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.config.Level
}

func (l *Logger) Tracef(format string, args ...interface{}) { l.Log(Trace, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.Log(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.Log(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.Log(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.Log(Error, format, args...) }

// Log emits a single message at the specified level, if that level is enabled.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	message := format
	if len(args) != 0 {
		message = fmt.Sprintf(format, args...)
	}
	line := fmt.Sprintf("[%s] [%s] %s", l.now().Format(l.config.DatetimeFormat), level, message)

	l.lock.Lock()
	defer l.lock.Unlock()
	if c := l.colors[level]; c != nil {
		_, _ = c.Fprintln(l.out, line)
		return
	}
	_, _ = fmt.Fprintln(l.out, line)
}

// Printf and Println make Logger usable wherever a framework.Logger is expected; such
// messages are logged at Debug level.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.Log(Debug, format, args...)
}

func (l *Logger) Println(args ...interface{}) {
	if !l.Enabled(Debug) {
		return
	}
	l.Log(Debug, "%s", strings.TrimRight(fmt.Sprintln(args...), "\r\n"))
}
