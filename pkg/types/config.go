package types

import "errors"

// Config holds the driver settings read from config.yaml.
type Config struct {
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Output   string `json:"output" yaml:"output" mapstructure:"output"`
}

// Supported output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Config validation errors.
var (
	ErrOutputUnknown   = errors.New("unknown output format")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

var knownOutputs = map[string]bool{
	OutputText: true,
	OutputJSON: true,
}

var knownLogLevels = map[string]bool{
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

// DefaultConfig returns the configuration used when config.yaml is absent.
func DefaultConfig() Config {
	return Config{LogLevel: LogLevelInfo, Output: OutputText}
}

// Validate checks that the Config is well-formed. Empty fields are accepted
// and mean "use the default". It returns a sentinel error from this package
// on failure.
func (c Config) Validate() error {
	if c.Output != "" && !knownOutputs[c.Output] {
		return ErrOutputUnknown
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}
