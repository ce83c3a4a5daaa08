package bus_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/entity"
	"eventbooking/pubsub/bus"
)

type publisherMock struct {
	lock   sync.Mutex
	topics []string
}

func (p *publisherMock) Publish(topic string, messages ...*message.Message) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.topics = append(p.topics, topic)
	return nil
}

func (p *publisherMock) Close() error {
	return nil
}

func TestEventBus_topics(t *testing.T) {
	publisher := &publisherMock{}

	eventBus, err := bus.NewEventBus(publisher)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eventBus.Publish(ctx, entity.BookingMade_v1{Header: entity.NewEventHeader()}))
	require.NoError(t, eventBus.Publish(ctx, entity.EventReminderDue_v1{Header: entity.NewEventHeader()}))

	assert.Equal(
		t,
		[]string{bus.EventsTopic, bus.InternalEventTopic("EventReminderDue_v1")},
		publisher.topics,
	)
}
