// Package logging holds the swappable package loggers used across the module.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var nop = zap.NewNop()

// Scope is one package's logger. The zero value logs nothing.
type Scope struct {
	l atomic.Pointer[zap.Logger]
}

// Logger returns the configured logger, or a no-op logger if none was set.
func (s *Scope) Logger() *zap.Logger {
	if l := s.l.Load(); l != nil {
		return l
	}
	return nop
}

// Set replaces the logger. A nil logger restores the no-op default.
// Safe to call while other goroutines are logging.
func (s *Scope) Set(l *zap.Logger) {
	s.l.Store(l)
}
