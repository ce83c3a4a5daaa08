package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eventbooking/entity"
)

type ReviewsPostgresRepository struct {
	db *sqlx.DB
}

func NewReviewsPostgresRepository(db *sqlx.DB) *ReviewsPostgresRepository {
	if db == nil {
		panic("missing db")
	}

	return &ReviewsPostgresRepository{db: db}
}

// Store adds the review if its author has a confirmed booking of the event.
// A user reviews an event once.
func (r *ReviewsPostgresRepository) Store(ctx context.Context, review entity.Review) error {
	return UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			var eventExists, attended bool
			err := tx.QueryRowxContext(ctx, `
				SELECT
					EXISTS (SELECT 1 FROM events WHERE event_id = $2),
					EXISTS (
						SELECT 1 FROM bookings
						WHERE user_id = $1 AND event_id = $2 AND payment_status = 'succeeded'
					)
			`, review.UserID, review.EventID).Scan(&eventExists, &attended)
			if err != nil {
				return fmt.Errorf("could not check bookings of user %s: %w", review.UserID, err)
			}
			if !eventExists {
				return fmt.Errorf("event %s: %w", review.EventID, entity.ErrNotFound)
			}
			if !attended {
				return entity.ErrNotAttended
			}

			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO reviews (review_id, user_id, username, event_id, rating, review_text, created_at)
				VALUES (:review_id, :user_id, :username, :event_id, :rating, :review_text, :created_at)
			`, review)
			if err != nil {
				if isErrorUniqueViolation(err) {
					return entity.ErrAlreadyReviewed
				}
				return fmt.Errorf("could not add review: %w", err)
			}

			return nil
		},
	)
}

func (r *ReviewsPostgresRepository) ListByEvent(ctx context.Context, eventID string) (entity.EventReviews, error) {
	reviews := []entity.Review{}
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews
		WHERE event_id = $1
		ORDER BY created_at DESC
	`, eventID)
	if err != nil {
		return entity.EventReviews{}, fmt.Errorf("could not list reviews of event %s: %w", eventID, err)
	}

	return entity.NewEventReviews(reviews), nil
}
