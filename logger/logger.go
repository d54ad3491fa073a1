package logger

import (
	"go.uber.org/zap"
)

// Log defaults to a nop logger so packages can log before Init runs
// (and so tests do not need to initialize logging).
var Log = zap.NewNop().Sugar()

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// InitDevelopment switches to the console encoder. Used by the diagnostic
// client so snapshots stay readable next to log lines.
func InitDevelopment() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
