package logger

import (
	"fmt"
	"os"
	"strings"

	"wallet-aggregator/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates and configures a new zap logger based on the provided configuration.
// Logs go to stdout unless a different sink is given.
func NewLogger(cfg config.LoggerConfig, sink ...zapcore.WriteSyncer) (*zap.Logger, error) {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case "json", "":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log encoding %q", cfg.Encoding)
	}

	out := zapcore.Lock(os.Stdout)
	if len(sink) > 0 && sink[0] != nil {
		out = sink[0]
	}

	logger := zap.New(zapcore.NewCore(
		encoder,
		out,
		logLevel,
	), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return logger, nil
}
