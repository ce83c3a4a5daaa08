package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ReviewID   string    `json:"review_id" db:"review_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Username   string    `json:"username" db:"username"`
	EventID    string    `json:"event_id" db:"event_id"`
	Rating     int       `json:"rating" db:"rating"`
	ReviewText string    `json:"review_text" db:"review_text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// NewReview validates a student's rating of an event. Whether the student
// booked the event is checked when the review is stored.
func NewReview(identity Identity, eventID string, rating int, text string, now time.Time) (Review, error) {
	if err := identity.RequireRole(RoleStudent); err != nil {
		return Review{}, err
	}
	if rating < MinRating || rating > MaxRating {
		return Review{}, NewValidationError("rating", "must be between 1 and 5")
	}

	return Review{
		ReviewID:   uuid.NewString(),
		UserID:     identity.UserID,
		Username:   identity.Username,
		EventID:    eventID,
		Rating:     rating,
		ReviewText: strings.TrimSpace(text),
		CreatedAt:  now.UTC(),
	}, nil
}

type EventReviews struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	TotalReviews  int      `json:"total_reviews"`
}

// NewEventReviews expects reviews newest first. The average of no reviews is 0.
func NewEventReviews(reviews []Review) EventReviews {
	if reviews == nil {
		reviews = []Review{}
	}

	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}

	var avg float64
	if len(reviews) > 0 {
		avg = float64(sum) / float64(len(reviews))
	}

	return EventReviews{
		Reviews:       reviews,
		AverageRating: avg,
		TotalReviews:  len(reviews),
	}
}
