package tracing

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is reported with every span and names the tracer of the
// service's own spans.
const ServiceName = "eventbooking"

// ConfigureTraceProvider exports spans to the Jaeger collector. Without an
// explicit endpoint the gateway's Jaeger proxy is used, and without either
// tracing stays off and the provider is nil.
func ConfigureTraceProvider(jaegerEndpoint, gatewayAddr string) (*tracesdk.TracerProvider, error) {
	if jaegerEndpoint == "" {
		if gatewayAddr == "" {
			return nil, nil
		}
		jaegerEndpoint = fmt.Sprintf("%s/jaeger-api/api/traces", gatewayAddr)
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("could not create jaeger exporter: %w", err)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
			semconv.ServiceNamespace("campus-events"),
		)),
	)

	otel.SetTracerProvider(tp)

	// messages carry the trace context, so handlers continue the publisher's trace
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

func Tracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}

// PropagatingPublisher writes the trace context of each message's context
// into its metadata.
type PropagatingPublisher struct {
	message.Publisher
}

func (p PropagatingPublisher) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		otel.GetTextMapPropagator().Inject(msg.Context(), propagation.MapCarrier(msg.Metadata))
	}

	return p.Publisher.Publish(topic, messages...)
}

// ContextFromMessage returns the message context joined with the trace
// context the publisher stored in the metadata.
func ContextFromMessage(msg *message.Message) context.Context {
	return otel.GetTextMapPropagator().Extract(msg.Context(), propagation.MapCarrier(msg.Metadata))
}
