package pubsub

import (
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"eventbooking/tracing"
)

const consumerGroupPrefix = "svc-eventbooking."

// NewRedisPublisher publishes to redis streams. Each message gets the
// correlation id and the trace context of the context it is published with.
func NewRedisPublisher(rdb *redis.Client, watermillLogger watermill.LoggerAdapter) (message.Publisher, error) {
	redisPublisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create redis publisher: %w", err)
	}

	var publisher message.Publisher = redisPublisher
	publisher = tracing.PropagatingPublisher{Publisher: publisher}
	publisher = log.CorrelationPublisherDecorator{Publisher: publisher}

	return publisher, nil
}

// NewRedisSubscriber reads in its own consumer group per handler, so every
// handler sees every message of the stream.
func NewRedisSubscriber(rdb *redis.Client, handlerName string, watermillLogger watermill.LoggerAdapter) (message.Subscriber, error) {
	sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        rdb,
		ConsumerGroup: consumerGroupPrefix + handlerName,
	}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create %s subscriber: %w", handlerName, err)
	}

	return sub, nil
}
