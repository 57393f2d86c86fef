package log

import (
	"context"
	"os"

	"go.uber.org/zap"
)

type ctxKey string

// RequestIDKey is the context key used to tag log lines with a request id.
const RequestIDKey ctxKey = "request_id"

var logger *zap.Logger

func init() {
	Configure(os.Getenv("DEBUG") == "true")
}

// Configure rebuilds the process logger. main calls it again once .env has
// been loaded so DEBUG set there takes effect.
func Configure(debug bool) {
	if debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
}

func WithCtx(ctx context.Context) *zap.Logger {
	fields := []zap.Field{}

	if v := ctx.Value(RequestIDKey); v != nil {
		fields = append(fields, zap.Any("request_id", v))
	}

	return logger.With(fields...)
}

func With(fields ...zap.Field) *zap.Logger {
	return logger.With(fields...)
}

// Sync flushes buffered entries. Call before the process exits.
func Sync() {
	_ = logger.Sync()
}
