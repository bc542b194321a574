package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_DebugEnablesDebugLevel(t *testing.T) {
	logger, err := NewLogger(true)
	if err != nil {
		t.Fatalf("NewLogger(true) error: %v", err)
	}
	defer logger.Sync()
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger should log at debug level")
	}
}

func TestNewLogger_ProductionStartsAtInfo(t *testing.T) {
	logger, err := NewLogger(false)
	if err != nil {
		t.Fatalf("NewLogger(false) error: %v", err)
	}
	defer logger.Sync()
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("production logger should not log at debug level")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("production logger should log at info level")
	}
}
