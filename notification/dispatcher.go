package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"eventbooking/entity"
)

type Repository interface {
	GetPreferences(ctx context.Context, userID string) (entity.NotificationPreferences, error)
	Store(ctx context.Context, notification entity.Notification) error
}

type Dispatcher struct {
	repo     Repository
	channels []Channel
	now      func() time.Time
}

func NewDispatcher(repo Repository, channels ...Channel) Dispatcher {
	if repo == nil {
		panic("missing repo")
	}
	if len(channels) == 0 {
		panic("missing channels")
	}

	return Dispatcher{
		repo:     repo,
		channels: channels,
		now:      time.Now,
	}
}

// Dispatch sends msg through every channel the user has enabled and records
// each attempt. A failed delivery is recorded and does not fail the call,
// only failing to record it does.
func (d Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	prefs, err := d.repo.GetPreferences(ctx, msg.UserID)
	if err != nil {
		return err
	}

	if msg.EventUpdate && !prefs.EventUpdates {
		return nil
	}
	if msg.Reminder && !prefs.EventReminders {
		return nil
	}

	enabled := lo.Filter(d.channels, func(c Channel, _ int) bool {
		if len(msg.Channels) > 0 && !lo.Contains(msg.Channels, c.Kind()) {
			return false
		}
		return c.Enabled(prefs)
	})

	var errs error
	for _, channel := range enabled {
		n := entity.Notification{
			NotificationID: notificationID(msg, channel.Kind()),
			UserID:         msg.UserID,
			EventID:        lo.EmptyableToPtr(msg.EventID),
			Channel:        channel.Kind(),
			Title:          msg.Title,
			Content:        msg.Content,
			CreatedAt:      d.now().UTC(),
		}

		if err := channel.Deliver(ctx, msg, prefs); err != nil {
			log.FromContext(ctx).
				WithError(err).
				WithField("channel", channel.Kind()).
				WithField("user_id", msg.UserID).
				Warn("Could not deliver notification")
			n.Error = err.Error()
		} else {
			n.Sent = true
		}

		if err := d.repo.Store(ctx, n); err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not store %s notification: %w", channel.Kind(), err))
		}
	}

	return errs
}

// notificationID is stable for a redelivered message, so storing it again
// overwrites the earlier attempt.
func notificationID(msg Message, channel entity.Channel) string {
	if msg.IdempotencyKey == "" {
		return uuid.NewString()
	}

	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(msg.IdempotencyKey+"/"+msg.UserID+"/"+string(channel))).String()
}
