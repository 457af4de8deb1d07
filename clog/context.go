package clog

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// extractContextFields 按配置从 ctx 中提取字段，追加到 attrs
func extractContextFields(ctx context.Context, o *options, attrs *[]slog.Attr) {
	if ctx == nil || o == nil {
		return
	}

	for _, cf := range o.contextFields {
		val := ctx.Value(cf.Key)
		if val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			*attrs = append(*attrs, slog.String(cf.FieldName, v))
		case fmt.Stringer:
			*attrs = append(*attrs, slog.String(cf.FieldName, v.String()))
		default:
			*attrs = append(*attrs, slog.Any(cf.FieldName, v))
		}
	}

	if o.enableTraceExtraction {
		sc := trace.SpanContextFromContext(ctx)
		if sc.HasTraceID() {
			*attrs = append(*attrs, slog.String("trace_id", sc.TraceID().String()))
		}
		if sc.HasSpanID() {
			*attrs = append(*attrs, slog.String("span_id", sc.SpanID().String()))
		}
	}
}
