package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one upstream call or orchestration step and logs its outcome.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
	attrs  []any
}

// StartSpan derives a child span from ctx. The returned context carries a
// logger tagged with trace_id, span_id and span_name so nested work logs
// under the same trace.
func StartSpan(ctx context.Context, name string, attrs ...any) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	traceLogger, _ := ctx.Value(traceLoggerKey).(*slog.Logger)
	if TraceIDFromContext(ctx) == "" || traceLogger == nil {
		traceID := TraceIDFromContext(ctx)
		if traceID == "" {
			traceID = uuid.NewString()
			ctx = withString(ctx, traceIDKey, traceID)
		}
		traceLogger = FromContext(ctx).With(slog.String("trace_id", traceID))
		ctx = context.WithValue(ctx, traceLoggerKey, traceLogger)
	}

	spanID := uuid.NewString()
	logger := traceLogger.With(slog.String("span_id", spanID), slog.String("span_name", name))
	if parent := SpanIDFromContext(ctx); parent != "" {
		logger = logger.With(slog.String("parent_span_id", parent))
	}

	ctx = withString(ctx, spanIDKey, spanID)
	ctx = WithLogger(ctx, logger)

	return ctx, &Span{name: name, logger: logger, start: time.Now(), attrs: attrs}
}

// Annotate adds key/value pairs reported when the span ends.
func (s *Span) Annotate(attrs ...any) {
	if s == nil {
		return
	}
	s.attrs = append(s.attrs, attrs...)
}

// End logs span completion with its duration.
func (s *Span) End() {
	if s == nil {
		return
	}
	attrs := append([]any{slog.Duration("duration", time.Since(s.start))}, s.attrs...)
	s.logger.Debug("span completed", attrs...)
}

// EndWithError logs the span at warn level when err is non-nil.
func (s *Span) EndWithError(err error) {
	if s == nil {
		return
	}
	if err == nil {
		s.End()
		return
	}
	attrs := append([]any{slog.Duration("duration", time.Since(s.start)), slog.Any("error", err)}, s.attrs...)
	s.logger.Warn("span failed", attrs...)
}
