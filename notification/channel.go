package notification

import (
	"context"
	"errors"

	"eventbooking/entity"
)

// Message is what the user should be told, independent of the channel.
type Message struct {
	UserID  string
	EventID string
	Title   string
	Content string

	// Email and Phone are used when the user did not set their own contact
	// details in the preferences.
	Email string
	Phone string

	// EventUpdate marks messages the user can mute with the event updates
	// preference.
	EventUpdate bool

	// Reminder marks messages the user can mute with the event reminders
	// preference.
	Reminder bool

	// Channels limits delivery to the listed channels. Empty means all.
	Channels []entity.Channel

	IdempotencyKey string
}

// Channel delivers a Message one way. Each channel decides on its own
// whether the user's preferences allow it.
type Channel interface {
	Kind() entity.Channel
	Enabled(prefs entity.NotificationPreferences) bool
	Deliver(ctx context.Context, msg Message, prefs entity.NotificationPreferences) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, content string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

var errNoAddress = errors.New("no address to deliver to")

// InApp notifications are delivered by being stored, which the dispatcher
// does for every channel.
type InApp struct{}

func (InApp) Kind() entity.Channel {
	return entity.ChannelInApp
}

func (InApp) Enabled(prefs entity.NotificationPreferences) bool {
	return prefs.InApp
}

func (InApp) Deliver(ctx context.Context, msg Message, prefs entity.NotificationPreferences) error {
	return nil
}

type Email struct {
	sender EmailSender
}

func NewEmail(sender EmailSender) Email {
	if sender == nil {
		panic("missing sender")
	}

	return Email{sender: sender}
}

func (Email) Kind() entity.Channel {
	return entity.ChannelEmail
}

func (Email) Enabled(prefs entity.NotificationPreferences) bool {
	return prefs.EmailNotifications
}

func (c Email) Deliver(ctx context.Context, msg Message, prefs entity.NotificationPreferences) error {
	to := firstNonEmpty(prefs.Email, msg.Email)
	if to == "" {
		return errNoAddress
	}

	return c.sender.SendEmail(ctx, to, msg.Title, msg.Content)
}

type SMS struct {
	sender SMSSender
}

func NewSMS(sender SMSSender) SMS {
	if sender == nil {
		panic("missing sender")
	}

	return SMS{sender: sender}
}

func (SMS) Kind() entity.Channel {
	return entity.ChannelSMS
}

func (SMS) Enabled(prefs entity.NotificationPreferences) bool {
	return prefs.SMSNotifications
}

func (c SMS) Deliver(ctx context.Context, msg Message, prefs entity.NotificationPreferences) error {
	phone := firstNonEmpty(prefs.Phone, msg.Phone)
	if phone == "" {
		return errNoAddress
	}

	return c.sender.SendSMS(ctx, phone, msg.Title+": "+msg.Content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
