package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/entity"
)

func validEventParams(now time.Time) entity.NewEventParams {
	return entity.NewEventParams{
		Title:        "Go meetup",
		Description:  "Talks and pizza",
		Location:     "Main hall",
		Category:     "tech",
		Price:        10,
		Date:         now.Add(48 * time.Hour),
		TotalTickets: 50,
	}
}

func TestNewEvent(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		e, err := entity.NewEvent("org-1", validEventParams(now), now)
		require.NoError(t, err)

		assert.NotEmpty(t, e.EventID)
		assert.Equal(t, entity.EventStatusPending, e.Status)
		assert.Equal(t, 50, e.RemainingTickets)
		assert.Equal(t, 1, e.MinGroupSize)
		assert.Equal(t, 1, e.MaxGroupSize)
	})

	t.Run("group defaults", func(t *testing.T) {
		p := validEventParams(now)
		p.IsGroupEvent = true

		e, err := entity.NewEvent("org-1", p, now)
		require.NoError(t, err)
		assert.Equal(t, 2, e.MinGroupSize)
		assert.Equal(t, 10, e.MaxGroupSize)
	})

	testCases := []struct {
		Name   string
		Modify func(p *entity.NewEventParams)
		Field  string
	}{
		{Name: "missing title", Modify: func(p *entity.NewEventParams) { p.Title = "  " }, Field: "title"},
		{Name: "negative price", Modify: func(p *entity.NewEventParams) { p.Price = -1 }, Field: "price"},
		{Name: "no tickets", Modify: func(p *entity.NewEventParams) { p.TotalTickets = 0 }, Field: "total_tickets"},
		{Name: "past date", Modify: func(p *entity.NewEventParams) { p.Date = now.Add(-time.Hour) }, Field: "date"},
		{
			Name: "max below min",
			Modify: func(p *entity.NewEventParams) {
				p.IsGroupEvent = true
				p.MinGroupSize = 5
				p.MaxGroupSize = 3
			},
			Field: "group_size",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			p := validEventParams(now)
			tc.Modify(&p)

			_, err := entity.NewEvent("org-1", p, now)
			require.ErrorIs(t, err, entity.ErrValidation)

			var validationErr entity.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.Field, validationErr.Field)
		})
	}
}

func TestEvent_CheckBookable(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	groupEvent := entity.Event{
		Date:             now.Add(time.Hour),
		TotalTickets:     10,
		RemainingTickets: 10,
		IsGroupEvent:     true,
		MinGroupSize:     2,
		MaxGroupSize:     5,
	}

	assert.NoError(t, groupEvent.CheckBookable(now, 3))
	assert.ErrorIs(t, groupEvent.CheckBookable(now, 1), entity.ErrValidation)
	assert.ErrorIs(t, groupEvent.CheckBookable(now, 6), entity.ErrValidation)
	assert.ErrorIs(t, groupEvent.CheckBookable(now, 11), entity.ErrSoldOut)
	assert.ErrorIs(t, groupEvent.CheckBookable(groupEvent.Date, 3), entity.ErrRegistrationClosed)

	single := entity.Event{
		Date:             now.Add(time.Hour),
		TotalTickets:     1,
		RemainingTickets: 1,
		MinGroupSize:     1,
		MaxGroupSize:     1,
	}
	assert.NoError(t, single.CheckBookable(now, 1))
	assert.ErrorIs(t, single.CheckBookable(now, 2), entity.ErrSoldOut)

	single.RemainingTickets = 0
	assert.ErrorIs(t, single.CheckBookable(now, 1), entity.ErrSoldOut)
}
