package pubsub

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"eventbooking/entity"
	"eventbooking/pubsub/bus"
)

type DataLake interface {
	StoreEvent(ctx context.Context, dataLakeEvent entity.DataLakeEvent) error
}

func NewWatermillRouter(
	redisClient *redis.Client,
	redisPublisher message.Publisher,
	eventProcessorConfig cqrs.EventProcessorConfig,
	eventHandlers []cqrs.EventHandler,
	dataLake DataLake,
	watermillLogger watermill.LoggerAdapter,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	useMiddlewares(router, watermillLogger)

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(router, eventProcessorConfig)
	if err != nil {
		return nil, fmt.Errorf("could not create event processor: %w", err)
	}

	if err := eventProcessor.AddHandlers(eventHandlers...); err != nil {
		return nil, fmt.Errorf("could not add handlers to event processor: %w", err)
	}

	splitterSubscriber, err := NewRedisSubscriber(redisClient, "events_splitter", watermillLogger)
	if err != nil {
		return nil, err
	}
	dataLakeSubscriber, err := NewRedisSubscriber(redisClient, "store_to_data_lake", watermillLogger)
	if err != nil {
		return nil, err
	}

	router.AddNoPublisherHandler(
		"events_splitter",
		bus.EventsTopic,
		splitterSubscriber,
		func(msg *message.Message) error {
			eventName := eventProcessorConfig.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("could not get event name from message")
			}

			return redisPublisher.Publish(bus.EventTopic(eventName), msg)
		},
	)

	router.AddNoPublisherHandler(
		"store_to_data_lake",
		bus.EventsTopic,
		dataLakeSubscriber,
		func(msg *message.Message) error {
			eventName := eventProcessorConfig.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("could not get event name from message")
			}

			// only the header is needed, the payload is stored as is
			type Event struct {
				Header entity.EventHeader `json:"header"`
			}

			var event Event
			if err := eventProcessorConfig.Marshaler.Unmarshal(msg, &event); err != nil {
				return fmt.Errorf("could not unmarshal event: %w", err)
			}

			return dataLake.StoreEvent(
				msg.Context(),
				entity.DataLakeEvent{
					ID:          event.Header.ID,
					PublishedAt: event.Header.PublishedAt,
					Name:        eventName,
					Payload:     msg.Payload,
				},
			)
		},
	)

	return router, nil
}
