package obs

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerOnce sync.Once
	logger     *zap.Logger
)

// InitLogger builds the shared logger. Production emits JSON lines; any other
// environment gets the colorized development encoder.
func InitLogger(env string) *zap.Logger {
	loggerOnce.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.OutputPaths = []string{"stdout"}

		l, err := cfg.Build()
		if err != nil {
			panic("build logger: " + err.Error())
		}
		logger = l
	})
	return logger
}

// Logger returns the shared logger, initialising a development logger if
// InitLogger was never called (tests, small commands).
func Logger() *zap.Logger {
	if logger == nil {
		return InitLogger("development")
	}
	return logger
}

// SetLoggerForTests swaps the shared logger. Only intended for test use.
func SetLoggerForTests(l *zap.Logger) {
	loggerOnce.Do(func() {})
	logger = l
}
