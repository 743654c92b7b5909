package observability

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceHandler wraps every handler invocation in a span carrying the
// message uuid and correlation id.
func TraceHandler(tracer trace.Tracer) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			ctx, span := tracer.Start(msg.Context(), "handle_message", trace.WithAttributes(
				attribute.String("message_id", msg.UUID),
				attribute.String("correlation_id", msg.Metadata.Get(middleware.CorrelationIDMetadataKey)),
			))
			defer span.End()

			msg.SetContext(ctx)
			messages, err := h(msg)
			if err != nil {
				span.RecordError(err)
			}
			return messages, err
		}
	}
}
