package bus

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"eventbooking/entity"
)

const (
	EventsTopic         = "events"
	internalTopicPrefix = "internal-events.svc-eventbooking."
)

func NewEventBus(pub message.Publisher) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			event, ok := params.Event.(entity.DomainEvent)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entity.DomainEvent", params.Event)
			}

			if event.IsInternal() {
				return internalTopicPrefix + params.EventName, nil
			}

			// goes through the splitter, which stores it in the data lake and
			// forwards it to the per-event topic
			return EventsTopic, nil
		},
		Marshaler: Marshaler,
	})
}

var Marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

func EventTopic(eventName string) string {
	return EventsTopic + "." + eventName
}

func InternalEventTopic(eventName string) string {
	return internalTopicPrefix + eventName
}
