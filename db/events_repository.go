package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"eventbooking/entity"
	"eventbooking/pubsub/bus"
	"eventbooking/pubsub/outbox"
)

type EventsPostgresRepository struct {
	db     *sqlx.DB
	ledger InventoryLedger
}

func NewEventsPostgresRepository(db *sqlx.DB) *EventsPostgresRepository {
	if db == nil {
		panic("missing db")
	}

	return &EventsPostgresRepository{db: db, ledger: NewInventoryLedger()}
}

func (r *EventsPostgresRepository) Store(ctx context.Context, event entity.Event) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO events (
			event_id, title, description, location, category, price, date, organizer_id,
			total_tickets, remaining_tickets, is_group_event, min_group_size, max_group_size,
			status, created_at
		) VALUES (
			:event_id, :title, :description, :location, :category, :price, :date, :organizer_id,
			:total_tickets, :remaining_tickets, :is_group_event, :min_group_size, :max_group_size,
			:status, :created_at
		)
	`, event)
	if err != nil {
		return fmt.Errorf("could not store event %s: %w", event.EventID, err)
	}

	return nil
}

func (r *EventsPostgresRepository) Get(ctx context.Context, eventID string) (entity.Event, error) {
	var event entity.Event
	err := r.db.GetContext(ctx, &event, `SELECT * FROM events WHERE event_id = $1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, fmt.Errorf("event %s: %w", eventID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.Event{}, fmt.Errorf("could not get event %s: %w", eventID, err)
	}

	return event, nil
}

// ListUpcoming returns events that have not started yet and were not
// rejected, narrowed by filter.
func (r *EventsPostgresRepository) ListUpcoming(ctx context.Context, now time.Time, filter entity.EventFilter) ([]entity.Event, error) {
	where := []string{"date > $1", "status <> 'rejected'"}
	args := []any{now}

	addArg := func(condition string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(condition, len(args)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", n, n, n))
	}
	if filter.Category != "" {
		addArg("category = $%d", filter.Category)
	}
	if filter.MinPrice != nil {
		addArg("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		addArg("price <= $%d", *filter.MaxPrice)
	}
	if filter.StartDate != nil {
		addArg("date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addArg("date < $%d", filter.EndDate.AddDate(0, 0, 1))
	}

	orderBy := "date ASC"
	switch filter.Sort {
	case entity.EventSortPrice:
		orderBy = "price ASC, date ASC"
	case entity.EventSortPopularity:
		orderBy = "(total_tickets - remaining_tickets) DESC, date ASC"
	}

	query := "SELECT * FROM events WHERE " + strings.Join(where, " AND ") + " ORDER BY " + orderBy

	events := []entity.Event{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("could not list upcoming events: %w", err)
	}

	return events, nil
}

// Featured returns the soonest upcoming events for the landing page.
func (r *EventsPostgresRepository) Featured(ctx context.Context, now time.Time, limit int) ([]entity.Event, error) {
	events := []entity.Event{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT * FROM events
		WHERE date > $1 AND status <> 'rejected'
		ORDER BY date ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list featured events: %w", err)
	}

	return events, nil
}

func (r *EventsPostgresRepository) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.SelectContext(ctx, &categories, `SELECT DISTINCT category FROM events ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("could not list categories: %w", err)
	}

	return categories, nil
}

func (r *EventsPostgresRepository) ListAll(ctx context.Context) ([]entity.Event, error) {
	events := []entity.Event{}
	err := r.db.SelectContext(ctx, &events, `SELECT * FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}

	return events, nil
}

func (r *EventsPostgresRepository) ListByStatus(ctx context.Context, status entity.EventStatus) ([]entity.Event, error) {
	events := []entity.Event{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT * FROM events WHERE status = $1 ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("could not list %s events: %w", status, err)
	}

	return events, nil
}

func (r *EventsPostgresRepository) UpdateStatus(ctx context.Context, eventID string, status entity.EventStatus) (entity.Event, error) {
	var event entity.Event
	err := r.db.GetContext(ctx, &event, `
		UPDATE events SET status = $2 WHERE event_id = $1 RETURNING *
	`, eventID, status)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, fmt.Errorf("event %s: %w", eventID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.Event{}, fmt.Errorf("could not update status of event %s: %w", eventID, err)
	}

	return event, nil
}

// Delete removes an event together with its bookings. When organizerID is
// set, only that organizer's events can be deleted. Attendees of the deleted
// event are notified through EventCancelled_v1.
func (r *EventsPostgresRepository) Delete(ctx context.Context, eventID string, organizerID string) (entity.Event, error) {
	var deleted entity.Event

	err := UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			event, err := r.ledger.LockEvent(ctx, tx, eventID)
			if err != nil {
				return err
			}
			if organizerID != "" && event.OrganizerID != organizerID {
				return fmt.Errorf("event %s belongs to another organizer: %w", eventID, entity.ErrForbidden)
			}

			var userIDs []string
			err = tx.SelectContext(ctx, &userIDs, `
				DELETE FROM bookings
				WHERE event_id = $1
				RETURNING user_id
			`, eventID)
			if err != nil {
				return fmt.Errorf("could not delete bookings of event %s: %w", eventID, err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE event_id = $1`, eventID); err != nil {
				return fmt.Errorf("could not delete event %s: %w", eventID, err)
			}

			deleted = event

			if len(userIDs) == 0 {
				return nil
			}

			return publishInTx(ctx, tx, entity.EventCancelled_v1{
				Header:     entity.NewEventHeader(),
				EventID:    event.EventID,
				EventTitle: event.Title,
				UserIDs:    userIDs,
			})
		},
	)
	if err != nil {
		return entity.Event{}, err
	}

	return deleted, nil
}

// DeleteExpired removes every event whose date is before now, with its
// bookings, in one transaction. Running it twice is harmless.
func (r *EventsPostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (entity.SweepResult, error) {
	var result entity.SweepResult

	err := UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			var eventIDs []string
			err := tx.SelectContext(ctx, &eventIDs, `
				SELECT event_id FROM events
				WHERE date < $1
				ORDER BY event_id
				FOR UPDATE
			`, now)
			if err != nil {
				return fmt.Errorf("could not lock expired events: %w", err)
			}
			if len(eventIDs) == 0 {
				return nil
			}

			res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE event_id = ANY($1)`, pq.Array(eventIDs))
			if err != nil {
				return fmt.Errorf("could not delete bookings of expired events: %w", err)
			}
			bookingsDeleted, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("could not get affected rows: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE event_id = ANY($1)`, pq.Array(eventIDs)); err != nil {
				return fmt.Errorf("could not delete expired events: %w", err)
			}

			result = entity.SweepResult{EventIDs: eventIDs, BookingsDeleted: int(bookingsDeleted)}
			return nil
		},
	)
	if err != nil {
		return entity.SweepResult{}, err
	}

	return result, nil
}

func (r *EventsPostgresRepository) DashboardStats(ctx context.Context, now time.Time) (entity.DashboardStats, error) {
	stats := entity.DashboardStats{
		BookingsPerDay:   []entity.DailyCount{},
		EventsByCategory: []entity.CategoryCount{},
	}

	err := r.db.GetContext(ctx, &stats.TotalEvents, `SELECT COUNT(*) FROM events`)
	if err != nil {
		return stats, fmt.Errorf("could not count events: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.PendingEvents, `SELECT COUNT(*) FROM events WHERE status = 'pending'`)
	if err != nil {
		return stats, fmt.Errorf("could not count pending events: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(group_size), 0)
		FROM bookings
		WHERE payment_status = 'succeeded'
	`).Scan(&stats.TotalBookings, &stats.TotalAttendees)
	if err != nil {
		return stats, fmt.Errorf("could not count bookings: %w", err)
	}

	err = r.db.SelectContext(ctx, &stats.BookingsPerDay, `
		SELECT TO_CHAR(DATE(booking_date AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day, COUNT(*) AS count
		FROM bookings
		WHERE booking_date >= $1 AND payment_status = 'succeeded'
		GROUP BY day
		ORDER BY day
	`, now.AddDate(0, 0, -7))
	if err != nil {
		return stats, fmt.Errorf("could not count bookings per day: %w", err)
	}

	err = r.db.SelectContext(ctx, &stats.EventsByCategory, `
		SELECT category, COUNT(*) AS count
		FROM events
		GROUP BY category
		ORDER BY count DESC, category
	`)
	if err != nil {
		return stats, fmt.Errorf("could not count events per category: %w", err)
	}

	return stats, nil
}

func publishInTx(ctx context.Context, tx *sqlx.Tx, event entity.DomainEvent) error {
	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return fmt.Errorf("could not create outbox publisher: %w", err)
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return fmt.Errorf("could not create event bus: %w", err)
	}

	if err := eventBus.Publish(ctx, event); err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}
