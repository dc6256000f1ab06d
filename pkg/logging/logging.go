// Package logging builds the service logger. Log records flow through
// ectologger for context enrichment and are written by a zap core.
package logging

import (
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates the service logger. level is one of debug, info, warn or
// error. When pretty is true records are written in console encoding
// for local development.
func New(appName, level string, pretty bool) (ectologger.Logger, func(), error) {
	zapLevel := parseLevel(level)

	var zapConfig zap.Config
	if pretty {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	zl, err := zapConfig.Build(zap.WithCaller(false))
	if err != nil {
		return nil, nil, err
	}
	zl = zl.Named(appName)

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		record, err := json.Marshal(msg)
		if err != nil {
			zl.Error("unencodable log record", zap.Error(err))
			return
		}
		zl.Info(string(record))
	})

	flush := func() {
		_ = zl.Sync()
	}

	return logger, flush, nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
