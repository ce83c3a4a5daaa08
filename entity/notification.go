package entity

import "time"

type Channel string

const (
	ChannelInApp Channel = "in-app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

type Notification struct {
	NotificationID string    `json:"notification_id" db:"notification_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	EventID        *string   `json:"event_id,omitempty" db:"event_id"`
	Channel        Channel   `json:"channel" db:"channel"`
	Title          string    `json:"title" db:"title"`
	Content        string    `json:"content" db:"content"`
	Sent           bool      `json:"sent" db:"sent"`
	Error          string    `json:"error,omitempty" db:"error"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type NotificationPreferences struct {
	UserID             string `json:"user_id" db:"user_id"`
	EmailNotifications bool   `json:"email_notifications" db:"email_notifications"`
	SMSNotifications   bool   `json:"sms_notifications" db:"sms_notifications"`
	EventUpdates       bool   `json:"event_updates" db:"event_updates"`
	EventReminders     bool   `json:"event_reminders" db:"event_reminders"`
	InApp              bool   `json:"in_app" db:"in_app"`
	Email              string `json:"email" db:"email"`
	Phone              string `json:"phone" db:"phone"`
}

func DefaultNotificationPreferences(userID string) NotificationPreferences {
	return NotificationPreferences{
		UserID:             userID,
		EmailNotifications: true,
		SMSNotifications:   true,
		EventUpdates:       true,
		EventReminders:     true,
		InApp:              true,
	}
}

type Activity struct {
	ActivityID   string    `json:"activity_id" db:"activity_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	ActivityType string    `json:"activity_type" db:"activity_type"`
	Description  string    `json:"description" db:"description"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
