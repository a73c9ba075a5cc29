package logging

// EnvVarName is the environment variable that selects the log level for a test run.
const EnvVarName = "LOG"

// DefaultDatetimeFormat renders timestamps as HH:MM:SS.mmm.
const DefaultDatetimeFormat = "15:04:05.000"

// Config describes how log lines are rendered. It is a plain value: callers get a copy and
// commit a modified copy, so no component can change another component's configuration by
// accident.
type Config struct {
	// Level is the minimum severity that will be emitted.
	Level Level

	// DatetimeFormat is a Go time layout used for the timestamp prefix of each line.
	DatetimeFormat string

	// UseColors enables ANSI colors, one per severity.
	UseColors bool
}

// DefaultConfig returns the configuration that applies if nothing else is specified.
func DefaultConfig() Config {
	return Config{
		Level:          Info,
		DatetimeFormat: DefaultDatetimeFormat,
		UseColors:      true,
	}
}

// LevelFromEnv interprets the value of the LOG environment variable: "DEBUG" selects Debug,
// and anything else, including an empty value, selects Info.
func LevelFromEnv(value string) Level {
	if value == "DEBUG" {
		return Debug
	}
	return Info
}

// WithLevel returns a copy of the configuration with a different level.
func (c Config) WithLevel(level Level) Config {
	c.Level = level
	return c
}
