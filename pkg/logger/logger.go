// Package logger builds the structured logger every engine instance uses
// for lifecycle and recovery events. It wraps go.uber.org/zap, the logging
// library the rest of this module's stack standardizes on.
package logger

import "go.uber.org/zap"

// New builds a *zap.SugaredLogger tagged with the given service name. It
// uses zap's production configuration (JSON encoding, info level) since the
// engine is meant to be embedded in long-running services rather than run
// interactively.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails if the default config can't open its
		// sinks, which for the default stderr sink never happens in
		// practice; fall back to a no-op logger rather than panic.
		base = zap.NewNop()
	}
	return base.Sugar().With("service", service)
}

// Noop returns a logger that discards everything, for tests and callers
// that don't want engine lifecycle events on stderr.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
