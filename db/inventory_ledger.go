package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eventbooking/entity"
)

// InventoryLedger tracks remaining seats per event. It never opens its own
// transaction: every call runs inside the caller's tx, after the event row
// has been locked.
type InventoryLedger struct{}

func NewInventoryLedger() InventoryLedger {
	return InventoryLedger{}
}

// LockEvent takes the row lock every inventory mutation is serialized on.
func (l InventoryLedger) LockEvent(ctx context.Context, tx *sqlx.Tx, eventID string) (entity.Event, error) {
	var event entity.Event
	err := tx.GetContext(ctx, &event, `
		SELECT * FROM events
		WHERE event_id = $1
		FOR UPDATE
	`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, fmt.Errorf("event %s: %w", eventID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.Event{}, fmt.Errorf("could not lock event %s: %w", eventID, err)
	}

	return event, nil
}

// Reserve takes n seats. Zero affected rows means there were fewer than n
// seats left, and nothing changes.
func (l InventoryLedger) Reserve(ctx context.Context, tx *sqlx.Tx, eventID string, n int) error {
	if n < 1 {
		return entity.NewValidationError("group_size", "must be at least 1")
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE events
		SET remaining_tickets = remaining_tickets - $2
		WHERE event_id = $1 AND remaining_tickets >= $2
	`, eventID, n)
	if err != nil {
		return fmt.Errorf("could not reserve %d seats for event %s: %w", n, eventID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrSoldOut
	}

	return nil
}

// Release returns n seats to the pool, capped at total_tickets.
func (l InventoryLedger) Release(ctx context.Context, tx *sqlx.Tx, eventID string, n int) error {
	if n < 1 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE events
		SET remaining_tickets = LEAST(remaining_tickets + $2, total_tickets)
		WHERE event_id = $1
	`, eventID, n)
	if err != nil {
		return fmt.Errorf("could not release %d seats for event %s: %w", n, eventID, err)
	}

	return nil
}
