// Package logging configures the process-wide zerolog logger. Per-request
// context fields are attached by the correlation middleware, not here.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the base JSON logger at the configured level. Unknown levels
// fall back to info rather than failing startup.
func New(level, service string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
