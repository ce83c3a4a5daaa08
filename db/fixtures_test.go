package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"eventbooking/entity"
)

func storeEvent(t *testing.T, repo *EventsPostgresRepository, modify ...func(e *entity.Event)) entity.Event {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	event := entity.Event{
		EventID:          uuid.NewString(),
		Title:            "Concert " + uuid.NewString()[:8],
		Description:      "Live music",
		Location:         "Arena",
		Category:         "music",
		Price:            25,
		Date:             now.Add(72 * time.Hour),
		OrganizerID:      "organizer-" + uuid.NewString(),
		TotalTickets:     10,
		RemainingTickets: 10,
		MinGroupSize:     1,
		MaxGroupSize:     1,
		Status:           entity.EventStatusApproved,
		CreatedAt:        now,
	}
	for _, m := range modify {
		m(&event)
	}

	require.NoError(t, repo.Store(context.Background(), event))

	return event
}

func newBooking(eventID string, groupSize int, status entity.PaymentStatus) entity.Booking {
	now := time.Now().UTC()

	paymentID := entity.NewPendingPaymentID()
	if status == entity.PaymentStatusSucceeded {
		paymentID = entity.NewDirectPaymentID()
	}

	return entity.Booking{
		BookingID: uuid.NewString(),
		UserID:    "user-" + uuid.NewString(),
		EventID:   eventID,
		GroupSize: groupSize,
		Attendee: entity.Attendee{
			Name:   "Ada Lovelace",
			Email:  "ada@example.com",
			Mobile: "555-0100",
			Branch: "CSE",
			Year:   "3",
		},
		PaymentStatus: status,
		PaymentID:     paymentID,
		BookingDate:   now,
		UpdatedAt:     now,
	}
}
