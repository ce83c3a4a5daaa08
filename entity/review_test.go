package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/entity"
)

func TestNewReview(t *testing.T) {
	student := entity.Identity{UserID: "student-1", Username: "ada", Role: entity.RoleStudent}
	now := time.Now()

	review, err := entity.NewReview(student, "event-1", 4, "  Loved it ", now)
	require.NoError(t, err)
	assert.Equal(t, "student-1", review.UserID)
	assert.Equal(t, "ada", review.Username)
	assert.Equal(t, "Loved it", review.ReviewText)
	assert.NotEmpty(t, review.ReviewID)

	for _, rating := range []int{0, 6, -1} {
		_, err := entity.NewReview(student, "event-1", rating, "", now)
		assert.ErrorIs(t, err, entity.ErrValidation, "rating %d", rating)
	}

	organizer := entity.Identity{UserID: "organizer-1", Role: entity.RoleOrganizer}
	_, err = entity.NewReview(organizer, "event-1", 5, "", now)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestNewEventReviews(t *testing.T) {
	reviews := entity.NewEventReviews(nil)
	assert.Equal(t, 0, reviews.TotalReviews)
	assert.Equal(t, 0.0, reviews.AverageRating)
	assert.NotNil(t, reviews.Reviews)

	reviews = entity.NewEventReviews([]entity.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}})
	assert.Equal(t, 3, reviews.TotalReviews)
	assert.InDelta(t, 4.333, reviews.AverageRating, 0.001)
}
