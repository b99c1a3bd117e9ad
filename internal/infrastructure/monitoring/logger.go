package monitoring

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

// ZapLogger implements logger.Logger on top of zap. Loggers derived through
// WithFields or WithComponent share the level of their parent.
type ZapLogger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger creates a JSON logger writing to stdout.
func NewZapLogger(cfg *config.LogConfig) (*ZapLogger, error) {
	return NewZapLoggerWithWriter(cfg, os.Stdout)
}

// NewZapLoggerWithWriter creates a logger writing to w.
func NewZapLoggerWithWriter(cfg *config.LogConfig, w io.Writer) (*ZapLogger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	atomic := zap.NewAtomicLevelAt(level)

	encoder := zapcore.NewJSONEncoder(encoderConfig)
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), atomic)
	return &ZapLogger{
		Logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)),
		level:  atomic,
	}, nil
}

// SetLevel changes the level of this logger and every logger derived from it.
func (l *ZapLogger) SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(parsed)
	return nil
}

// Level returns the current level name.
func (l *ZapLogger) Level() string {
	return l.level.Level().String()
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Debug(msg, l.convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Info(msg, l.convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Warn(msg, l.convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	zapFields := l.convertFields(ctx, fields...)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	l.Logger.Error(msg, zapFields...)
}

func (l *ZapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	zapFields := l.convertFields(ctx, fields...)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	l.Logger.Fatal(msg, zapFields...)
}

func (l *ZapLogger) WithFields(fields logger.Fields) logger.Logger {
	return &ZapLogger{Logger: l.Logger.With(l.convertFields(context.Background(), fields)...), level: l.level}
}

func (l *ZapLogger) WithComponent(component string) logger.Logger {
	return &ZapLogger{Logger: l.Logger.With(zap.String("component", component)), level: l.level}
}

func (l *ZapLogger) ForContext(ctx context.Context) logger.Logger {
	if ctxLogger, ok := ctx.Value(constants.ContextKeyLogger).(logger.Logger); ok {
		return ctxLogger
	}
	return l
}

func (l *ZapLogger) convertFields(ctx context.Context, fields ...logger.Fields) []zap.Field {
	zapFields := make([]zap.Field, 0)
	if ctx != nil {
		if span := trace.SpanContextFromContext(ctx); span.IsValid() {
			zapFields = append(zapFields, zap.String("trace_id", span.TraceID().String()))
		} else if traceID, ok := ctx.Value(constants.ContextKeyTraceID).(string); ok {
			zapFields = append(zapFields, zap.String("trace_id", traceID))
		}
		if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
			zapFields = append(zapFields, zap.String("request_id", requestID))
		}
		if podID, ok := ctx.Value(constants.ContextKeyPodID).(string); ok {
			zapFields = append(zapFields, zap.String("pod_id", podID))
		}
	}

	for _, f := range fields {
		for k, v := range f {
			zapFields = append(zapFields, zap.Any(k, logger.Sanitize(k, v)))
		}
	}
	return zapFields
}
