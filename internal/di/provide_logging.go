package di

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

// ProvideLogger creates a new zerolog.Logger configured for the runtime environment.
// In Lambda (when AWS_LAMBDA_RUNTIME_API is set), it uses JSON format on stdout.
// In terminal/CLI, it uses console format on stderr so stdout only carries results.
// LOG_LEVEL overrides the default level (info in Lambda, warn in a terminal).
func ProvideLogger() zerolog.Logger {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		// Running in Lambda - use JSON format
		return NewLogger(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL"), zerolog.InfoLevel))
	}

	// Running in terminal - use console format with colors
	return NewLogger(zerolog.ConsoleWriter{Out: os.Stderr}, ParseLevel(os.Getenv("LOG_LEVEL"), zerolog.WarnLevel))
}

// NewLogger creates a timestamped logger writing to w at level.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel parses a zerolog level name, returning fallback for empty or unknown names.
func ParseLevel(name string, fallback zerolog.Level) zerolog.Level {
	if name == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return fallback
	}
	return level
}

// WithRunID tags logger with a unique run_id so every line of one invocation can be
// correlated.
func WithRunID(logger zerolog.Logger) zerolog.Logger {
	return logger.With().Str("run_id", ksuid.New().String()).Logger()
}
