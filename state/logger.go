package state

import (
	"go.uber.org/zap"

	"github.com/wippyai/modcache/internal/logging"
)

var log logging.Scope

// Logger returns the state package's logger. It is a no-op until SetLogger is called.
func Logger() *zap.Logger { return log.Logger() }

// SetLogger configures the state package's logger.
func SetLogger(l *zap.Logger) { log.Set(l) }
