package entity

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is anything published on the event bus.
type DomainEvent interface {
	IsInternal() bool
}

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type BookingMade_v1 struct {
	Header EventHeader `json:"header"`

	BookingID     string        `json:"booking_id"`
	EventID       string        `json:"event_id"`
	UserID        string        `json:"user_id"`
	GroupSize     int           `json:"group_size"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

func (e BookingMade_v1) IsInternal() bool {
	return false
}

type BookingConfirmed_v1 struct {
	Header EventHeader `json:"header"`

	BookingID     string `json:"booking_id"`
	EventID       string `json:"event_id"`
	EventTitle    string `json:"event_title"`
	UserID        string `json:"user_id"`
	AttendeeEmail string `json:"attendee_email"`
	AttendeePhone string `json:"attendee_phone"`
	GroupSize     int    `json:"group_size"`
	PaymentID     string `json:"payment_id"`
}

func (e BookingConfirmed_v1) IsInternal() bool {
	return false
}

type BookingFailed_v1 struct {
	Header EventHeader `json:"header"`

	BookingID     string `json:"booking_id"`
	EventID       string `json:"event_id"`
	EventTitle    string `json:"event_title"`
	UserID        string `json:"user_id"`
	AttendeeEmail string `json:"attendee_email"`
	AttendeePhone string `json:"attendee_phone"`
	GroupSize     int    `json:"group_size"`
	Reason        string `json:"reason"`
}

func (e BookingFailed_v1) IsInternal() bool {
	return false
}

type TicketPrinted_v1 struct {
	Header EventHeader `json:"header"`

	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
	FileName  string `json:"file_name"`
}

func (e TicketPrinted_v1) IsInternal() bool {
	return false
}

// EventCancelled_v1 is published when an organizer or admin deletes an
// event that still had bookings.
type EventCancelled_v1 struct {
	Header EventHeader `json:"header"`

	EventID    string   `json:"event_id"`
	EventTitle string   `json:"event_title"`
	UserIDs    []string `json:"user_ids"`
}

func (e EventCancelled_v1) IsInternal() bool {
	return false
}

// EventReminderDue_v1 is published once per confirmed booking when its event
// is about to start. Only this service consumes it.
type EventReminderDue_v1 struct {
	Header EventHeader `json:"header"`

	BookingID     string    `json:"booking_id"`
	EventID       string    `json:"event_id"`
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	Location      string    `json:"location"`
	UserID        string    `json:"user_id"`
	AttendeeEmail string    `json:"attendee_email"`
	AttendeePhone string    `json:"attendee_phone"`
}

func (e EventReminderDue_v1) IsInternal() bool {
	return true
}

type DataLakeEvent struct {
	ID          string    `db:"event_id"`
	PublishedAt time.Time `db:"published_at"`
	Name        string    `db:"event_name"`
	Payload     []byte    `db:"event_payload"`
}
