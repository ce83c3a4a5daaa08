package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/entity"
	"eventbooking/gateway"
	"eventbooking/notification"
)

type repositoryMock struct {
	lock          sync.Mutex
	preferences   map[string]entity.NotificationPreferences
	notifications map[string]entity.Notification
}

func (r *repositoryMock) GetPreferences(ctx context.Context, userID string) (entity.NotificationPreferences, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if prefs, ok := r.preferences[userID]; ok {
		return prefs, nil
	}

	return entity.DefaultNotificationPreferences(userID), nil
}

func (r *repositoryMock) Store(ctx context.Context, n entity.Notification) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.notifications == nil {
		r.notifications = make(map[string]entity.Notification)
	}
	r.notifications[n.NotificationID] = n

	return nil
}

func (r *repositoryMock) stored() []entity.Notification {
	r.lock.Lock()
	defer r.lock.Unlock()

	return lo.Values(r.notifications)
}

type failingSender struct{}

func (failingSender) SendEmail(ctx context.Context, to, subject, content string) error {
	return errors.New("smtp unavailable")
}

func newMessage() notification.Message {
	return notification.Message{
		UserID:         "user-1",
		EventID:        "event-1",
		Title:          "Booking confirmed",
		Content:        "See you at the Hackathon",
		Email:          "ada@example.com",
		Phone:          "555-0100",
		IdempotencyKey: "booking-1",
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	repo := &repositoryMock{}
	sender := &gateway.NotificationsMock{}

	dispatcher := notification.NewDispatcher(
		repo,
		notification.InApp{},
		notification.NewEmail(sender),
		notification.NewSMS(sender),
	)

	require.NoError(t, dispatcher.Dispatch(context.Background(), newMessage()))

	stored := repo.stored()
	require.Len(t, stored, 3)
	assert.ElementsMatch(
		t,
		[]entity.Channel{entity.ChannelInApp, entity.ChannelEmail, entity.ChannelSMS},
		lo.Map(stored, func(n entity.Notification, _ int) entity.Channel { return n.Channel }),
	)
	for _, n := range stored {
		assert.True(t, n.Sent, n.Channel)
		require.NotNil(t, n.EventID)
		assert.Equal(t, "event-1", *n.EventID)
	}

	require.Len(t, sender.SentEmails(), 1)
	assert.Equal(t, "ada@example.com", sender.SentEmails()[0].To)
	require.Len(t, sender.SentSMS(), 1)
	assert.Equal(t, "555-0100", sender.SentSMS()[0].To)

	// redelivery overwrites the same records
	require.NoError(t, dispatcher.Dispatch(context.Background(), newMessage()))
	assert.Len(t, repo.stored(), 3)
}

func TestDispatcher_Dispatch_respects_preferences(t *testing.T) {
	repo := &repositoryMock{
		preferences: map[string]entity.NotificationPreferences{
			"user-1": {
				UserID:             "user-1",
				EmailNotifications: true,
				SMSNotifications:   false,
				EventUpdates:       false,
				InApp:              true,
				Email:              "personal@example.com",
			},
		},
	}
	sender := &gateway.NotificationsMock{}

	dispatcher := notification.NewDispatcher(
		repo,
		notification.InApp{},
		notification.NewEmail(sender),
		notification.NewSMS(sender),
	)

	require.NoError(t, dispatcher.Dispatch(context.Background(), newMessage()))

	assert.Len(t, repo.stored(), 2)
	assert.Empty(t, sender.SentSMS())
	require.Len(t, sender.SentEmails(), 1)
	assert.Equal(t, "personal@example.com", sender.SentEmails()[0].To)

	update := newMessage()
	update.IdempotencyKey = "event-cancelled-1"
	update.EventUpdate = true

	require.NoError(t, dispatcher.Dispatch(context.Background(), update))
	assert.Len(t, repo.stored(), 2, "event updates are muted")
}

func TestDispatcher_Dispatch_records_failed_delivery(t *testing.T) {
	repo := &repositoryMock{}

	dispatcher := notification.NewDispatcher(repo, notification.NewEmail(failingSender{}))

	require.NoError(t, dispatcher.Dispatch(context.Background(), newMessage()))

	stored := repo.stored()
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Sent)
	assert.Equal(t, "smtp unavailable", stored[0].Error)
}

func TestDispatcher_Dispatch_reminders(t *testing.T) {
	repo := &repositoryMock{
		preferences: map[string]entity.NotificationPreferences{
			"muted": {
				UserID:             "muted",
				EmailNotifications: true,
				SMSNotifications:   true,
				EventUpdates:       true,
				EventReminders:     false,
				InApp:              true,
			},
		},
	}
	sender := &gateway.NotificationsMock{}

	dispatcher := notification.NewDispatcher(
		repo,
		notification.InApp{},
		notification.NewEmail(sender),
		notification.NewSMS(sender),
	)

	reminder := newMessage()
	reminder.Reminder = true
	reminder.Channels = []entity.Channel{entity.ChannelEmail, entity.ChannelSMS}

	require.NoError(t, dispatcher.Dispatch(context.Background(), reminder))

	stored := repo.stored()
	assert.ElementsMatch(
		t,
		[]entity.Channel{entity.ChannelEmail, entity.ChannelSMS},
		lo.Map(stored, func(n entity.Notification, _ int) entity.Channel { return n.Channel }),
		"only the listed channels are used",
	)

	muted := reminder
	muted.UserID = "muted"
	require.NoError(t, dispatcher.Dispatch(context.Background(), muted))
	assert.Len(t, repo.stored(), 2, "muted reminders are not stored")
	assert.Len(t, sender.SentEmails(), 1)
}
