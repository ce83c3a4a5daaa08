package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"eventbooking/entity"
	"eventbooking/notification"
	"eventbooking/pubsub"
	"eventbooking/pubsub/bus"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, msg notification.Message) error
}

type ActivityLog interface {
	Store(ctx context.Context, activity entity.Activity) error
}

type Handler struct {
	dispatcher  Dispatcher
	activityLog ActivityLog
}

func NewHandler(dispatcher Dispatcher, activityLog ActivityLog) Handler {
	if dispatcher == nil {
		panic("missing dispatcher")
	}
	if activityLog == nil {
		panic("missing activityLog")
	}

	return Handler{
		dispatcher:  dispatcher,
		activityLog: activityLog,
	}
}

func (h Handler) Handlers() []cqrs.EventHandler {
	return []cqrs.EventHandler{
		h.NotifyBookingConfirmedHandler(),
		h.NotifyBookingFailedHandler(),
		h.NotifyEventCancelledHandler(),
		h.NotifyEventReminderHandler(),
		h.LogTicketPrintedHandler(),
	}
}

func NewProcessorConfig(redisClient *redis.Client, watermillLogger watermill.LoggerAdapter) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			event, ok := params.EventHandler.NewEvent().(entity.DomainEvent)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entity.DomainEvent", params.EventHandler.NewEvent())
			}

			if event.IsInternal() {
				return bus.InternalEventTopic(params.EventName), nil
			}

			return bus.EventTopic(params.EventName), nil
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return pubsub.NewRedisSubscriber(redisClient, params.HandlerName, watermillLogger)
		},
		Marshaler: bus.Marshaler,
		Logger:    watermillLogger,
	}
}
