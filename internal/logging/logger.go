// Package logging provides the structured logger shared by the goedit
// packages. Entries carry key/value fields and the trace ID stored in the
// request context.
package logging

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// LogField represents a key-value pair in structured logging.
type LogField struct {
	Key   string
	Value any
}

// Field creates a LogField from a key-value pair.
func Field(key string, value any) LogField {
	return LogField{Key: key, Value: value}
}

// Logger provides structured logging capabilities with context support.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...LogField)
	Info(ctx context.Context, msg string, fields ...LogField)
	Warn(ctx context.Context, msg string, fields ...LogField)
	Error(ctx context.Context, msg string, err error, fields ...LogField)
	WithFields(fields ...LogField) Logger
}

// NoOpLogger is a logger that discards all log entries.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(_ context.Context, _ string, _ ...LogField)          {}
func (n *NoOpLogger) Info(_ context.Context, _ string, _ ...LogField)           {}
func (n *NoOpLogger) Warn(_ context.Context, _ string, _ ...LogField)           {}
func (n *NoOpLogger) Error(_ context.Context, _ string, _ error, _ ...LogField) {}
func (n *NoOpLogger) WithFields(_ ...LogField) Logger                           { return n }

// ZapLogger adapts a *zap.Logger to the Logger interface.
type ZapLogger struct {
	base *zap.Logger
}

// NewZapLogger builds a console logger writing entries at or above minLevel
// to writer. A nil writer discards everything.
func NewZapLogger(minLevel Level, writer io.Writer) *ZapLogger {
	if writer == nil {
		return FromZap(zap.NewNop())
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(writer),
		zap.NewAtomicLevelAt(toZapLevel(minLevel)),
	)
	return FromZap(zap.New(core))
}

// FromZap wraps an existing zap logger.
func FromZap(base *zap.Logger) *ZapLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapLogger{base: base}
}

// ParseLevel maps a level name such as "debug" or "WARN" to a Level,
// defaulting to LevelInfo.
func ParseLevel(name string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(name))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *ZapLogger) fields(ctx context.Context, err error, fields []LogField) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+2)
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	if traceID := TraceID(ctx); traceID != "" {
		out = append(out, zap.String("trace_id", traceID))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return out
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, fields ...LogField) {
	z.base.Debug(msg, z.fields(ctx, nil, fields)...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, fields ...LogField) {
	z.base.Info(msg, z.fields(ctx, nil, fields)...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, fields ...LogField) {
	z.base.Warn(msg, z.fields(ctx, nil, fields)...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, err error, fields ...LogField) {
	z.base.Error(msg, z.fields(ctx, err, fields)...)
}

func (z *ZapLogger) WithFields(fields ...LogField) Logger {
	return &ZapLogger{base: z.base.With(z.fields(context.Background(), nil, fields)...)}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.base.Sync()
}

// traceIDKey is the context key for trace IDs.
type traceIDKey struct{}

// WithTraceID adds a trace ID to the context for request correlation.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID extracts the trace ID from context, if present.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewTraceID creates a new trace ID for request correlation.
func NewTraceID() string {
	return uuid.NewString()
}
