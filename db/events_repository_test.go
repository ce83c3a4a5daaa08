package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/entity"
)

func TestEventsRepository_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	db := GetDb(t)
	repo := NewEventsPostgresRepository(db)

	category := "cat-" + uuid.NewString()
	now := time.Now().UTC()

	cheap := storeEvent(t, repo, func(e *entity.Event) {
		e.Category = category
		e.Price = 5
		e.Title = "Cheap jazz night"
		e.Date = now.Add(96 * time.Hour)
	})
	expensive := storeEvent(t, repo, func(e *entity.Event) {
		e.Category = category
		e.Price = 50
		e.Date = now.Add(48 * time.Hour)
	})
	storeEvent(t, repo, func(e *entity.Event) {
		e.Category = category
		e.Status = entity.EventStatusRejected
	})
	storeEvent(t, repo, func(e *entity.Event) {
		e.Category = category
		e.Date = now.Add(-time.Hour)
	})

	events, err := repo.ListUpcoming(ctx, now, entity.EventFilter{Category: category})
	require.NoError(t, err)
	assert.Equal(t, []string{expensive.EventID, cheap.EventID}, eventIDs(events))

	events, err = repo.ListUpcoming(ctx, now, entity.EventFilter{Category: category, Sort: entity.EventSortPrice})
	require.NoError(t, err)
	assert.Equal(t, []string{cheap.EventID, expensive.EventID}, eventIDs(events))

	events, err = repo.ListUpcoming(ctx, now, entity.EventFilter{Category: category, Search: "JAZZ"})
	require.NoError(t, err)
	assert.Equal(t, []string{cheap.EventID}, eventIDs(events))

	events, err = repo.ListUpcoming(ctx, now, entity.EventFilter{Category: category, MinPrice: lo.ToPtr(10.0)})
	require.NoError(t, err)
	assert.Equal(t, []string{expensive.EventID}, eventIDs(events))

	endDate := now.Add(72 * time.Hour)
	events, err = repo.ListUpcoming(ctx, now, entity.EventFilter{Category: category, EndDate: &endDate})
	require.NoError(t, err)
	assert.Contains(t, eventIDs(events), expensive.EventID)
}

func TestEventsRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	db := GetDb(t)
	repo := NewEventsPostgresRepository(db)
	bookingsRepo := NewBookingsPostgresRepository(db)

	expired := storeEvent(t, repo)
	upcoming := storeEvent(t, repo)

	booking := newBooking(expired.EventID, 1, entity.PaymentStatusSucceeded)
	_, err := bookingsRepo.Create(ctx, booking, time.Now())
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE events SET date = $2 WHERE event_id = $1`, expired.EventID, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	result, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Contains(t, result.EventIDs, expired.EventID)
	assert.NotContains(t, result.EventIDs, upcoming.EventID)
	assert.GreaterOrEqual(t, result.BookingsDeleted, 1)

	_, err = repo.Get(ctx, expired.EventID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = bookingsRepo.Get(ctx, booking.BookingID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	again, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, again.EventIDs)

	_, err = repo.Get(ctx, upcoming.EventID)
	assert.NoError(t, err)
}

func TestEventsRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := GetDb(t)
	repo := NewEventsPostgresRepository(db)
	bookingsRepo := NewBookingsPostgresRepository(db)

	event := storeEvent(t, repo)
	_, err := bookingsRepo.Create(ctx, newBooking(event.EventID, 1, entity.PaymentStatusSucceeded), time.Now())
	require.NoError(t, err)

	_, err = repo.Delete(ctx, event.EventID, "someone-else")
	require.ErrorIs(t, err, entity.ErrForbidden)

	deleted, err := repo.Delete(ctx, event.EventID, event.OrganizerID)
	require.NoError(t, err)
	assert.Equal(t, event.Title, deleted.Title)

	_, err = repo.Get(ctx, event.EventID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = repo.Delete(ctx, event.EventID, "")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestEventsRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewEventsPostgresRepository(GetDb(t))

	event := storeEvent(t, repo, func(e *entity.Event) {
		e.Status = entity.EventStatusPending
	})

	updated, err := repo.UpdateStatus(ctx, event.EventID, entity.EventStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.EventStatusApproved, updated.Status)

	_, err = repo.UpdateStatus(ctx, uuid.NewString(), entity.EventStatusApproved)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func eventIDs(events []entity.Event) []string {
	return lo.Map(events, func(e entity.Event, _ int) string {
		return e.EventID
	})
}
