package outbox

import (
	"context"
	stdSQL "database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"

	"eventbooking/tracing"
)

const Topic = "events_to_forward"

// NewPublisherForDb returns a publisher that writes messages into the outbox
// table inside tx. They are only visible to the forwarder once tx commits.
func NewPublisherForDb(ctx context.Context, tx *sqlx.Tx) (message.Publisher, error) {
	var publisher message.Publisher

	logger := log.NewWatermill(log.FromContext(ctx))

	publisher, err := sql.NewPublisher(
		tx,
		sql.PublisherConfig{
			SchemaAdapter: sql.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create outbox publisher: %w", err)
	}

	publisher = forwarder.NewPublisher(publisher, forwarder.PublisherConfig{
		ForwarderTopic: Topic,
	})
	publisher = log.CorrelationPublisherDecorator{Publisher: publisher}
	publisher = tracing.PropagatingPublisher{Publisher: publisher}

	return publisher, nil
}

func NewPostgresSubscriber(db *stdSQL.DB, logger watermill.LoggerAdapter) message.Subscriber {
	sub, err := sql.NewSubscriber(db, sql.SubscriberConfig{
		SchemaAdapter:    sql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   sql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
	}, logger)
	if err != nil {
		panic(fmt.Errorf("could not create postgres subscriber: %w", err))
	}

	return sub
}

// SubscribeInitialize creates the outbox tables up front, so publishing
// inside a transaction never has to create them.
func SubscribeInitialize(db *stdSQL.DB, logger watermill.LoggerAdapter) error {
	sub := NewPostgresSubscriber(db, logger)
	defer sub.Close()

	initializer, ok := sub.(message.SubscribeInitializer)
	if !ok {
		return fmt.Errorf("postgres subscriber does not support initialization")
	}

	return initializer.SubscribeInitialize(Topic)
}

// NewForwarder moves messages from the outbox table to the real publisher.
func NewForwarder(
	postgresSubscriber message.Subscriber,
	publisher message.Publisher,
	logger watermill.LoggerAdapter,
) (*forwarder.Forwarder, error) {
	fwd, err := forwarder.NewForwarder(
		postgresSubscriber,
		publisher,
		logger,
		forwarder.Config{
			ForwarderTopic: Topic,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("could not create forwarder: %w", err)
	}

	return fwd, nil
}
