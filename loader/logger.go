package loader

import (
	"go.uber.org/zap"

	"github.com/wippyai/modcache/internal/logging"
)

var log logging.Scope

// Logger returns the loader package's logger. It is a no-op until SetLogger is called.
func Logger() *zap.Logger { return log.Logger() }

// SetLogger configures the loader package's logger.
func SetLogger(l *zap.Logger) { log.Set(l) }
