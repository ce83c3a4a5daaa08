package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eventbooking/entity"
)

// DataLake keeps a copy of every published domain event.
type DataLake struct {
	db *sqlx.DB
}

func NewDataLake(db *sqlx.DB) DataLake {
	if db == nil {
		panic("missing db")
	}

	return DataLake{db: db}
}

func (s DataLake) StoreEvent(ctx context.Context, dataLakeEvent entity.DataLakeEvent) error {
	_, err := s.db.NamedExecContext(
		ctx,
		`
			INSERT INTO
			    domain_events (event_id, published_at, event_name, event_payload)
			VALUES
			    (:event_id, :published_at, :event_name, :event_payload)`,
		dataLakeEvent,
	)
	if isErrorUniqueViolation(err) {
		// redelivery
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not store %s event in data lake: %w", dataLakeEvent.ID, err)
	}

	return nil
}

func (s DataLake) GetEvents(ctx context.Context) ([]entity.DataLakeEvent, error) {
	var events []entity.DataLakeEvent
	err := s.db.SelectContext(ctx, &events, "SELECT * FROM domain_events ORDER BY published_at ASC")
	if err != nil {
		return nil, fmt.Errorf("could not get events from data lake: %w", err)
	}

	return events, nil
}
