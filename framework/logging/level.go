package logging

import (
	"fmt"
	"strings"
)

// Level is the severity of a log message. Levels are ordered: a logger configured at a given
// level emits messages at that level and above.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
)

var levelNames = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"} //nolint:gochecknoglobals

func (l Level) String() string {
	if l < Trace || l > Error {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel converts a level name such as "debug" or "WARN" to a Level. It is not
// case-sensitive.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

// MarshalText and UnmarshalText allow a Level to be used in YAML/JSON configuration and as a
// command-line flag value.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Set is called by the command line parser.
func (l *Level) Set(value string) error {
	return l.UnmarshalText([]byte(value))
}
