package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eventbooking/entity"
)

type NotificationsPostgresRepository struct {
	db *sqlx.DB
}

func NewNotificationsPostgresRepository(db *sqlx.DB) *NotificationsPostgresRepository {
	if db == nil {
		panic("missing db")
	}

	return &NotificationsPostgresRepository{db: db}
}

// Store is idempotent on notification_id, so redelivered messages don't
// produce duplicates.
func (r *NotificationsPostgresRepository) Store(ctx context.Context, notification entity.Notification) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notifications (notification_id, user_id, event_id, channel, title, content, sent, error, created_at)
		VALUES (:notification_id, :user_id, :event_id, :channel, :title, :content, :sent, :error, :created_at)
		ON CONFLICT (notification_id) DO UPDATE SET sent = EXCLUDED.sent, error = EXCLUDED.error
	`, notification)
	if err != nil {
		return fmt.Errorf("could not store notification %s: %w", notification.NotificationID, err)
	}

	return nil
}

func (r *NotificationsPostgresRepository) ListByUser(ctx context.Context, userID string) ([]entity.Notification, error) {
	notifications := []entity.Notification{}
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list notifications of user %s: %w", userID, err)
	}

	return notifications, nil
}

// GetPreferences falls back to the defaults for users that never saved any.
func (r *NotificationsPostgresRepository) GetPreferences(ctx context.Context, userID string) (entity.NotificationPreferences, error) {
	var prefs entity.NotificationPreferences
	err := r.db.GetContext(ctx, &prefs, `SELECT * FROM notification_preferences WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.DefaultNotificationPreferences(userID), nil
	}
	if err != nil {
		return entity.NotificationPreferences{}, fmt.Errorf("could not get notification preferences of user %s: %w", userID, err)
	}

	return prefs, nil
}

func (r *NotificationsPostgresRepository) SavePreferences(ctx context.Context, prefs entity.NotificationPreferences) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notification_preferences (user_id, email_notifications, sms_notifications, event_updates, event_reminders, in_app, email, phone)
		VALUES (:user_id, :email_notifications, :sms_notifications, :event_updates, :event_reminders, :in_app, :email, :phone)
		ON CONFLICT (user_id) DO UPDATE SET
			email_notifications = EXCLUDED.email_notifications,
			sms_notifications = EXCLUDED.sms_notifications,
			event_updates = EXCLUDED.event_updates,
			event_reminders = EXCLUDED.event_reminders,
			in_app = EXCLUDED.in_app,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone
	`, prefs)
	if err != nil {
		return fmt.Errorf("could not save notification preferences of user %s: %w", prefs.UserID, err)
	}

	return nil
}
