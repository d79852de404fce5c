package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScope(t *testing.T) {
	var s Scope
	if s.Logger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("zero Scope logs")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	s.Set(zap.New(core))
	s.Logger().Info("hello")
	if logs.Len() != 1 {
		t.Errorf("captured %d entries, want 1", logs.Len())
	}

	s.Set(nil)
	if s.Logger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Set(nil) did not restore the no-op logger")
	}
}
