package pubsub

import (
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"eventbooking/metrics"
	"eventbooking/tracing"
)

// eventNameMetadataKey is where the cqrs marshaler stores the event name.
const eventNameMetadataKey = "name"

func useMiddlewares(router *message.Router, watermillLogger watermill.LoggerAdapter) {
	router.AddMiddleware(
		middleware.Recoverer,
		correlationID,
		retry(watermillLogger),
		traceHandler,
		logHandler,
		measureHandler,
	)
}

// retry covers short outages of postgres or the notification providers.
// Handlers are idempotent, so a redelivery after the last attempt is safe.
func retry(watermillLogger watermill.LoggerAdapter) message.HandlerMiddleware {
	return middleware.Retry{
		MaxRetries:      10,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware
}

// correlationID keeps the id of the HTTP request that caused the message,
// so its logs can be followed into the handlers.
func correlationID(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := msg.Metadata.Get("correlation_id")
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(msg.Context(), correlationID)
		ctx = log.ToContext(ctx, logrus.WithField("correlation_id", correlationID))
		msg.SetContext(ctx)

		return next(msg)
	}
}

func traceHandler(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		topic := message.SubscribeTopicFromCtx(msg.Context())
		handler := message.HandlerNameFromCtx(msg.Context())

		ctx, span := tracing.Tracer().Start(
			tracing.ContextFromMessage(msg),
			"eventbooking.handle "+handler,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				semconv.MessagingSystem("redis_streams"),
				semconv.MessagingOperationProcess,
				semconv.MessagingDestinationName(topic),
				semconv.MessagingMessageID(msg.UUID),
				attribute.String("eventbooking.handler", handler),
				attribute.String("eventbooking.event_name", msg.Metadata.Get(eventNameMetadataKey)),
			),
		)
		defer span.End()

		msg.SetContext(ctx)

		msgs, err := next(msg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return msgs, err
	}
}

func logHandler(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := log.FromContext(msg.Context()).WithFields(logrus.Fields{
			"message_id": msg.UUID,
			"handler":    message.HandlerNameFromCtx(msg.Context()),
			"event_name": msg.Metadata.Get(eventNameMetadataKey),
			"trace_id":   trace.SpanFromContext(msg.Context()).SpanContext().TraceID().String(),
		})

		logger.WithField("payload", string(msg.Payload)).Debug("Handling event")

		msgs, err := next(msg)
		if err != nil {
			logger.WithError(err).Error("Event handler failed")
		}

		return msgs, err
	}
}

func measureHandler(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		start := time.Now()
		labels := prometheus.Labels{
			"topic":   message.SubscribeTopicFromCtx(msg.Context()),
			"handler": message.HandlerNameFromCtx(msg.Context()),
		}

		msgs, err := next(msg)

		if err != nil {
			metrics.MessagesProcessingFailed.With(labels).Inc()
		}
		metrics.MessagesProcessed.With(labels).Inc()
		metrics.MessagesProcessingDuration.With(labels).Observe(time.Since(start).Seconds())

		return msgs, err
	}
}
