package logger

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Logger is a zerolog logger that takes its fields as maps, the shape the
// rest of the module builds them in.
type Logger struct {
	zl      zerolog.Logger
	service string
	closer  io.Closer
}

// Init validates cfg, prepares the log file and returns the process logger.
// The zerolog global logger is pointed at it too.
func Init(cfg *Config, service string) (*Logger, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.File != "" && cfg.Truncate {
		if err := truncate(cfg.File); err != nil {
			return nil, fmt.Errorf("truncate log file: %w", err)
		}
	}
	l := New(cfg, service)
	log.Logger = l.zl
	return l, nil
}

// New builds a logger without validating cfg. An unknown level falls back
// to info.
func New(cfg *Config, service string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	w, closer := writers(cfg, service)
	zl := zerolog.New(w)
	if w == nil {
		zl = zerolog.Nop()
	}
	ctx := zl.With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return &Logger{zl: ctx.Logger(), service: service, closer: closer}
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop(), service: "nop"}
}

// NewJSON writes JSON lines at debug level to w. Tests use it to assert on
// log output.
func NewJSON(w io.Writer, service string) *Logger {
	return &Logger{
		zl:      zerolog.New(w).Level(zerolog.DebugLevel).With().Str("service", service).Logger(),
		service: service,
	}
}

// Close flushes and closes the log file, if one is open.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) derive(zc zerolog.Context) *Logger {
	return &Logger{zl: zc.Logger(), service: l.service}
}

func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name))
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.zl.With().Fields(fields))
}

type ctxKey int

const (
	runIDKey ctxKey = iota
	userIDKey
)

// ContextWithRunID tags ctx so WithContext adds run_id.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// ContextWithUserID tags ctx so WithContext adds user_id.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// WithContext adds the run and user ids stored in ctx, and the trace id of
// a recording span when tracing is on.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if id, ok := ctx.Value(runIDKey).(string); ok {
		zc = zc.Str(FieldRunID, id)
	}
	if id, ok := ctx.Value(userIDKey).(string); ok {
		zc = zc.Str(FieldUserID, id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String())
	}
	return l.derive(zc)
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}
