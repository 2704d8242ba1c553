package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	orderIDKey   contextKey = "order_id"
)

// Field names shared by the request, GORM and service logs.
const (
	FieldRequestID = "request_id"
	FieldOrderID   = "order_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
)

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// WithRequestID records the request ID so that L and the GORM adapter can
// attach it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID stored in ctx, if any.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithOrderID scopes subsequent log lines to an order.
func WithOrderID(ctx context.Context, orderID string) context.Context {
	return context.WithValue(ctx, orderIDKey, orderID)
}

// GetOrderID returns the order ID stored in ctx, if any.
func GetOrderID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(orderIDKey).(string)
	return id
}

// L returns the context logger enriched with request, order and trace
// correlation fields. Missing values are omitted.
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds the correlation fields found in ctx to base.
func Enrich(ctx context.Context, base *zap.Logger) *zap.Logger {
	fields := correlationFields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func correlationFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String(FieldRequestID, id))
	}
	if id := GetOrderID(ctx); id != "" {
		fields = append(fields, zap.String(FieldOrderID, id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String(FieldTraceID, sc.TraceID().String()),
			zap.String(FieldSpanID, sc.SpanID().String()),
		)
	}
	return fields
}
