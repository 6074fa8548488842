package config

import (
	"fmt"
	"log/slog"
	"strings"
)

type Log struct {
	Format    LogFormat  `env:"LOG_FORMAT" envDefault:"JSON"`
	Level     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	AddSource bool       `env:"LOG_ADD_SOURCE" envDefault:"false"`
}

// LogFormat is the log output encoding.
type LogFormat uint8

const (
	LogFormatJSON LogFormat = iota
	LogFormatText
)

var logFormatNames = map[string]LogFormat{
	"JSON": LogFormatJSON,
	"TEXT": LogFormatText,
}

func (f LogFormat) String() string {
	for name, format := range logFormatNames {
		if format == f {
			return name
		}
	}
	return "UNKNOWN"
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *LogFormat) UnmarshalText(text []byte) error {
	format, ok := logFormatNames[strings.ToUpper(string(text))]
	if !ok {
		return fmt.Errorf("unknown log format: %s", text)
	}
	*f = format
	return nil
}

func (f LogFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
