package event

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/google/uuid"

	"eventbooking/entity"
	"eventbooking/notification"
)

func (h Handler) NotifyBookingConfirmedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"NotifyBookingConfirmedHandler",
		func(ctx context.Context, event *entity.BookingConfirmed_v1) error {
			log.FromContext(ctx).WithField("booking_id", event.BookingID).Info("Notifying about confirmed booking")

			content := fmt.Sprintf("Your booking for %s is confirmed.", event.EventTitle)
			if event.GroupSize > 1 {
				content = fmt.Sprintf("Your group booking for %d people for %s is confirmed.", event.GroupSize, event.EventTitle)
			}

			return h.dispatcher.Dispatch(ctx, notification.Message{
				UserID:         event.UserID,
				EventID:        event.EventID,
				Title:          "Booking Confirmed",
				Content:        content,
				Email:          event.AttendeeEmail,
				Phone:          event.AttendeePhone,
				IdempotencyKey: "booking-confirmed/" + event.Header.IdempotencyKey,
			})
		},
	)
}

func (h Handler) NotifyBookingFailedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"NotifyBookingFailedHandler",
		func(ctx context.Context, event *entity.BookingFailed_v1) error {
			log.FromContext(ctx).WithField("booking_id", event.BookingID).Info("Notifying about failed payment")

			return h.dispatcher.Dispatch(ctx, notification.Message{
				UserID:         event.UserID,
				EventID:        event.EventID,
				Title:          "Payment Failed",
				Content:        fmt.Sprintf("Payment for %s failed. Your seats were released, you can book again.", event.EventTitle),
				Email:          event.AttendeeEmail,
				Phone:          event.AttendeePhone,
				IdempotencyKey: "booking-failed/" + event.Header.IdempotencyKey,
			})
		},
	)
}

func (h Handler) NotifyEventCancelledHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"NotifyEventCancelledHandler",
		func(ctx context.Context, event *entity.EventCancelled_v1) error {
			log.FromContext(ctx).WithField("event_id", event.EventID).Info("Notifying attendees about cancelled event")

			for _, userID := range event.UserIDs {
				err := h.dispatcher.Dispatch(ctx, notification.Message{
					UserID:         userID,
					EventID:        event.EventID,
					Title:          "Event Cancelled",
					Content:        fmt.Sprintf("%s was cancelled by the organizer.", event.EventTitle),
					EventUpdate:    true,
					IdempotencyKey: "event-cancelled/" + event.Header.ID,
				})
				if err != nil {
					return err
				}
			}

			return nil
		},
	)
}

// reminderTimeLayout is how the start time is written in reminders.
const reminderTimeLayout = "03:04 PM"

func (h Handler) NotifyEventReminderHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"NotifyEventReminderHandler",
		func(ctx context.Context, event *entity.EventReminderDue_v1) error {
			log.FromContext(ctx).WithField("booking_id", event.BookingID).Info("Reminding attendee about upcoming event")

			return h.dispatcher.Dispatch(ctx, notification.Message{
				UserID:  event.UserID,
				EventID: event.EventID,
				Title:   fmt.Sprintf("Reminder: %s is tomorrow!", event.EventTitle),
				Content: fmt.Sprintf(
					"Don't forget! %s is happening tomorrow at %s at %s.",
					event.EventTitle,
					event.EventDate.UTC().Format(reminderTimeLayout),
					event.Location,
				),
				Email:          event.AttendeeEmail,
				Phone:          event.AttendeePhone,
				Reminder:       true,
				Channels:       []entity.Channel{entity.ChannelEmail, entity.ChannelSMS},
				IdempotencyKey: "event-reminder/" + event.Header.IdempotencyKey,
			})
		},
	)
}

func (h Handler) LogTicketPrintedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"LogTicketPrintedHandler",
		func(ctx context.Context, event *entity.TicketPrinted_v1) error {
			return h.activityLog.Store(ctx, entity.Activity{
				ActivityID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte("ticket-printed/"+event.Header.ID)).String(),
				UserID:       event.UserID,
				ActivityType: "ticket_printed",
				Description:  fmt.Sprintf("Ticket %s generated for booking %s", event.FileName, event.BookingID),
				CreatedAt:    time.Now().UTC(),
			})
		},
	)
}
