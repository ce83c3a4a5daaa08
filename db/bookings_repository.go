package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"eventbooking/entity"
)

type BookingsPostgresRepository struct {
	db     *sqlx.DB
	ledger InventoryLedger
}

func NewBookingsPostgresRepository(db *sqlx.DB) *BookingsPostgresRepository {
	if db == nil {
		panic("missing db")
	}

	return &BookingsPostgresRepository{db: db, ledger: NewInventoryLedger()}
}

// Create stores a new booking and takes its seats from the event in one
// transaction. The event row lock serializes concurrent bookings, so the
// inventory and duplicate checks below see the latest committed state.
func (r *BookingsPostgresRepository) Create(ctx context.Context, booking entity.Booking, now time.Time) (entity.Booking, error) {
	err := UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			event, err := r.ledger.LockEvent(ctx, tx, booking.EventID)
			if err != nil {
				return err
			}

			if err := event.CheckBookable(now, booking.GroupSize); err != nil {
				return err
			}

			var activeBookings int
			err = tx.GetContext(ctx, &activeBookings, `
				SELECT COUNT(*) FROM bookings
				WHERE user_id = $1 AND event_id = $2 AND payment_status <> 'failed'
			`, booking.UserID, booking.EventID)
			if err != nil {
				return fmt.Errorf("could not check existing bookings: %w", err)
			}
			if activeBookings > 0 {
				return entity.ErrDuplicateBooking
			}

			if err := r.ledger.Reserve(ctx, tx, booking.EventID, booking.GroupSize); err != nil {
				return err
			}

			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO bookings (
					booking_id, user_id, event_id, group_size,
					name, email, mobile, branch, year,
					payment_status, payment_id, booking_date, updated_at
				) VALUES (
					:booking_id, :user_id, :event_id, :group_size,
					:name, :email, :mobile, :branch, :year,
					:payment_status, :payment_id, :booking_date, :updated_at
				)
			`, booking)
			if err != nil {
				if isErrorUniqueViolation(err) {
					return entity.ErrDuplicateBooking
				}
				return fmt.Errorf("could not add booking: %w", err)
			}

			err = publishInTx(ctx, tx, entity.BookingMade_v1{
				Header:        entity.NewEventHeaderWithIdempotencyKey(booking.BookingID),
				BookingID:     booking.BookingID,
				EventID:       booking.EventID,
				UserID:        booking.UserID,
				GroupSize:     booking.GroupSize,
				PaymentStatus: booking.PaymentStatus,
			})
			if err != nil {
				return err
			}

			if booking.PaymentStatus == entity.PaymentStatusSucceeded {
				return publishInTx(ctx, tx, bookingConfirmed(booking, event))
			}

			return nil
		},
	)
	if err != nil {
		return entity.Booking{}, err
	}

	return booking, nil
}

// Confirm marks a pending booking as paid. It only changes the status, the
// seats were taken when the booking was created.
func (r *BookingsPostgresRepository) Confirm(ctx context.Context, bookingID string, paymentID string, now time.Time) (entity.Booking, error) {
	return r.updatePending(ctx, bookingID, func(ctx context.Context, tx *sqlx.Tx, event entity.Event, booking *entity.Booking) error {
		if err := booking.Confirm(paymentID, now); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET payment_status = $2, payment_id = $3, updated_at = $4
			WHERE booking_id = $1
		`, booking.BookingID, booking.PaymentStatus, booking.PaymentID, booking.UpdatedAt)
		if err != nil {
			if isErrorUniqueViolation(err) {
				return fmt.Errorf("payment %s is already used by another booking: %w", paymentID, entity.ErrPaymentFailed)
			}
			return fmt.Errorf("could not confirm booking %s: %w", booking.BookingID, err)
		}

		return publishInTx(ctx, tx, bookingConfirmed(*booking, event))
	})
}

// Fail marks a pending booking as failed and gives its seats back.
func (r *BookingsPostgresRepository) Fail(ctx context.Context, bookingID string, reason string, now time.Time) (entity.Booking, error) {
	return r.updatePending(ctx, bookingID, func(ctx context.Context, tx *sqlx.Tx, event entity.Event, booking *entity.Booking) error {
		if err := booking.Fail(now); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET payment_status = $2, updated_at = $3
			WHERE booking_id = $1
		`, booking.BookingID, booking.PaymentStatus, booking.UpdatedAt)
		if err != nil {
			return fmt.Errorf("could not fail booking %s: %w", booking.BookingID, err)
		}

		if err := r.ledger.Release(ctx, tx, booking.EventID, booking.GroupSize); err != nil {
			return err
		}

		return publishInTx(ctx, tx, entity.BookingFailed_v1{
			Header:        entity.NewEventHeaderWithIdempotencyKey(booking.BookingID),
			BookingID:     booking.BookingID,
			EventID:       booking.EventID,
			EventTitle:    event.Title,
			UserID:        booking.UserID,
			AttendeeEmail: booking.Email,
			AttendeePhone: booking.Mobile,
			GroupSize:     booking.GroupSize,
			Reason:        reason,
		})
	})
}

// updatePending locks the event row and then the booking row, and runs fn
// only while the booking is still pending. A booking that already reached a
// terminal state is returned as it is.
func (r *BookingsPostgresRepository) updatePending(
	ctx context.Context,
	bookingID string,
	fn func(ctx context.Context, tx *sqlx.Tx, event entity.Event, booking *entity.Booking) error,
) (entity.Booking, error) {
	existing, err := r.Get(ctx, bookingID)
	if err != nil {
		return entity.Booking{}, err
	}

	var booking entity.Booking

	err = UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			event, err := r.ledger.LockEvent(ctx, tx, existing.EventID)
			if err != nil {
				return err
			}

			err = tx.GetContext(ctx, &booking, `
				SELECT * FROM bookings
				WHERE booking_id = $1
				FOR UPDATE
			`, bookingID)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("booking %s: %w", bookingID, entity.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("could not lock booking %s: %w", bookingID, err)
			}

			if booking.PaymentStatus != entity.PaymentStatusPending {
				return nil
			}

			return fn(ctx, tx, event, &booking)
		},
	)
	if err != nil {
		return entity.Booking{}, err
	}

	return booking, nil
}

func (r *BookingsPostgresRepository) Get(ctx context.Context, bookingID string) (entity.Booking, error) {
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, `SELECT * FROM bookings WHERE booking_id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, fmt.Errorf("booking %s: %w", bookingID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not get booking %s: %w", bookingID, err)
	}

	return booking, nil
}

// FindLatestByUserAndEvent prefers the user's active booking and falls back
// to the most recent failed one.
func (r *BookingsPostgresRepository) FindLatestByUserAndEvent(ctx context.Context, userID, eventID string) (entity.Booking, error) {
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT * FROM bookings
		WHERE user_id = $1 AND event_id = $2
		ORDER BY (payment_status <> 'failed') DESC, booking_date DESC
		LIMIT 1
	`, userID, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, fmt.Errorf("booking of user %s for event %s: %w", userID, eventID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not find booking: %w", err)
	}

	return booking, nil
}

func (r *BookingsPostgresRepository) ListByUser(ctx context.Context, userID string) ([]entity.Booking, error) {
	bookings := []entity.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list bookings of user %s: %w", userID, err)
	}

	return bookings, nil
}

func (r *BookingsPostgresRepository) ListByEvent(ctx context.Context, eventID string) ([]entity.Booking, error) {
	bookings := []entity.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		WHERE event_id = $1
		ORDER BY booking_date
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("could not list bookings of event %s: %w", eventID, err)
	}

	return bookings, nil
}

// FindStalePending returns gateway bookings that stayed pending since before
// olderThan.
func (r *BookingsPostgresRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]entity.Booking, error) {
	bookings := []entity.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		WHERE payment_status = 'pending' AND booking_date < $1
		ORDER BY booking_date
	`, olderThan)
	if err != nil {
		return nil, fmt.Errorf("could not find stale pending bookings: %w", err)
	}

	return bookings, nil
}

type reminderCandidate struct {
	BookingID string    `db:"booking_id"`
	UserID    string    `db:"user_id"`
	EventID   string    `db:"event_id"`
	Email     string    `db:"email"`
	Mobile    string    `db:"mobile"`
	Title     string    `db:"title"`
	Date      time.Time `db:"date"`
	Location  string    `db:"location"`
}

// ClaimReminders publishes EventReminderDue_v1 for every confirmed booking of
// an event that starts within window after now. Each booking is claimed once,
// also when several sweepers run at the same time.
func (r *BookingsPostgresRepository) ClaimReminders(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	var claimed int

	err := UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			claimed = 0

			var candidates []reminderCandidate
			err := tx.SelectContext(ctx, &candidates, `
				SELECT b.booking_id, b.user_id, b.event_id, b.email, b.mobile, e.title, e.date, e.location
				FROM bookings b
				JOIN events e ON e.event_id = b.event_id
				WHERE b.payment_status = 'succeeded'
					AND e.date > $1 AND e.date <= $2
					AND NOT EXISTS (SELECT 1 FROM booking_reminders r WHERE r.booking_id = b.booking_id)
				ORDER BY e.date, b.booking_id
			`, now, now.Add(window))
			if err != nil {
				return fmt.Errorf("could not find bookings to remind: %w", err)
			}

			for _, c := range candidates {
				res, err := tx.ExecContext(ctx, `
					INSERT INTO booking_reminders (booking_id, sent_at)
					VALUES ($1, $2)
					ON CONFLICT (booking_id) DO NOTHING
				`, c.BookingID, now)
				if err != nil {
					return fmt.Errorf("could not claim reminder of booking %s: %w", c.BookingID, err)
				}
				rows, err := res.RowsAffected()
				if err != nil {
					return fmt.Errorf("could not get affected rows: %w", err)
				}
				if rows == 0 {
					// claimed by another sweeper
					continue
				}

				err = publishInTx(ctx, tx, entity.EventReminderDue_v1{
					Header:        entity.NewEventHeaderWithIdempotencyKey(c.BookingID),
					BookingID:     c.BookingID,
					EventID:       c.EventID,
					EventTitle:    c.Title,
					EventDate:     c.Date,
					Location:      c.Location,
					UserID:        c.UserID,
					AttendeeEmail: c.Email,
					AttendeePhone: c.Mobile,
				})
				if err != nil {
					return err
				}

				claimed++
			}

			return nil
		},
	)
	if err != nil {
		return 0, err
	}

	return claimed, nil
}

func bookingConfirmed(booking entity.Booking, event entity.Event) entity.BookingConfirmed_v1 {
	return entity.BookingConfirmed_v1{
		Header:        entity.NewEventHeaderWithIdempotencyKey(booking.BookingID),
		BookingID:     booking.BookingID,
		EventID:       booking.EventID,
		EventTitle:    event.Title,
		UserID:        booking.UserID,
		AttendeeEmail: booking.Email,
		AttendeePhone: booking.Mobile,
		GroupSize:     booking.GroupSize,
		PaymentID:     booking.PaymentID,
	}
}
