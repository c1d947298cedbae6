// Package logging configures the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance
var Logger = zap.NewNop()

// Setup builds a console logger writing to stderr. Debug enables per-file
// decisions and caller information; otherwise only info and above are shown.
func Setup(debug bool, appName, appVersion string) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		// Add default fields
		cfg.InitialFields = map[string]interface{}{
			"appName":    appName,
			"appVersion": appVersion,
		}
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.TimeKey = ""
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	built, err := cfg.Build()
	if err != nil {
		return Logger, err
	}
	Logger = built
	zap.ReplaceGlobals(Logger)
	return Logger, nil
}
