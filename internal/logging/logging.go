// Package logging provides the structured logger shared across the
// attester, verifier and CLI tools. It is a thin wrapper over
// cosmossdk.io/log so every component tags its lines with a stable
// "module" key, the same convention used by the network-security
// components elsewhere in this stack.
package logging

import (
	"os"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

// New returns a logger writing to stderr at the given level, scoped to
// module. Pass "" for level to fall back to info.
func New(module, level string) log.Logger {
	zlevel := zerolog.InfoLevel
	switch level {
	case "debug":
		zlevel = zerolog.DebugLevel
	case "warn":
		zlevel = zerolog.WarnLevel
	case "error":
		zlevel = zerolog.ErrorLevel
	}

	logger := log.NewLogger(os.Stderr, log.LevelOption(zlevel))
	return logger.With("module", module)
}

// Nop returns a logger that discards everything, used by tests that don't
// want log noise but still need to satisfy a log.Logger dependency.
func Nop() log.Logger {
	return log.NewNopLogger()
}
