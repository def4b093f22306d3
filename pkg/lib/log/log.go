// Package log exposes the logger the obra SDK writes to.
//
// Set [lib.Config.Logger] to any [Logger] implementation, the client tags
// every component output with an "svc" value. Leave it empty (or use [Noop])
// to keep the SDK silent.
//
// A thin adapter over the standard slog package:
//
//	type slogLogger struct{ l *slog.Logger }
//
//	func (s slogLogger) Infof(f string, a ...any)    { s.l.Info(fmt.Sprintf(f, a...)) }
//	func (s slogLogger) Warningf(f string, a ...any) { s.l.Warn(fmt.Sprintf(f, a...)) }
//	func (s slogLogger) Errorf(f string, a ...any)   { s.l.Error(fmt.Sprintf(f, a...)) }
//	func (s slogLogger) Debugf(f string, a ...any)   { s.l.Debug(fmt.Sprintf(f, a...)) }
//	// WithValues, WithCtxValues and SetValuesOnCtx complete the interface.
package log

import "github.com/obrahub/obra/internal/log"

// Logger is the logging interface of the SDK.
type Logger = log.Logger

// Kv are structured key-value pairs attached to the log lines.
type Kv = log.Kv

// Noop discards everything, it's the SDK default.
var Noop = log.Noop
