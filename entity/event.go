package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

const (
	defaultMinGroupSize = 2
	defaultMaxGroupSize = 10
)

type Event struct {
	EventID     string `json:"event_id" db:"event_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Location    string `json:"location" db:"location"`
	Category    string `json:"category" db:"category"`

	Price       float64   `json:"price" db:"price"`
	Date        time.Time `json:"date" db:"date"`
	OrganizerID string    `json:"organizer_id" db:"organizer_id"`

	TotalTickets     int `json:"total_tickets" db:"total_tickets"`
	RemainingTickets int `json:"remaining_tickets" db:"remaining_tickets"`

	IsGroupEvent bool `json:"is_group_event" db:"is_group_event"`
	MinGroupSize int  `json:"min_group_size" db:"min_group_size"`
	MaxGroupSize int  `json:"max_group_size" db:"max_group_size"`

	Status    EventStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

type NewEventParams struct {
	Title        string
	Description  string
	Location     string
	Category     string
	Price        float64
	Date         time.Time
	TotalTickets int
	IsGroupEvent bool
	MinGroupSize int
	MaxGroupSize int
}

// NewEvent validates an organizer's submission. Group sizes default to 2..10
// when a group event leaves them unset.
func NewEvent(organizerID string, p NewEventParams, now time.Time) (Event, error) {
	if organizerID == "" {
		return Event{}, ErrForbidden
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Location = strings.TrimSpace(p.Location)
	p.Category = strings.TrimSpace(p.Category)

	switch {
	case p.Title == "":
		return Event{}, NewValidationError("title", "is required")
	case p.Description == "":
		return Event{}, NewValidationError("description", "is required")
	case p.Location == "":
		return Event{}, NewValidationError("location", "is required")
	case p.Category == "":
		return Event{}, NewValidationError("category", "is required")
	case p.Price < 0:
		return Event{}, NewValidationError("price", "must not be negative")
	case p.TotalTickets < 1:
		return Event{}, NewValidationError("total_tickets", "must be a positive number")
	case p.Date.IsZero():
		return Event{}, NewValidationError("date", "is required")
	case !p.Date.After(now):
		return Event{}, NewValidationError("date", "event date must be in the future")
	}

	minSize, maxSize := 1, 1
	if p.IsGroupEvent {
		minSize, maxSize = p.MinGroupSize, p.MaxGroupSize
		if minSize == 0 {
			minSize = defaultMinGroupSize
		}
		if maxSize == 0 {
			maxSize = defaultMaxGroupSize
		}
		if minSize < 1 || maxSize < minSize {
			return Event{}, NewValidationError("group_size", "invalid group size settings")
		}
	}

	return Event{
		EventID:          uuid.NewString(),
		Title:            p.Title,
		Description:      p.Description,
		Location:         p.Location,
		Category:         p.Category,
		Price:            p.Price,
		Date:             p.Date.UTC(),
		OrganizerID:      organizerID,
		TotalTickets:     p.TotalTickets,
		RemainingTickets: p.TotalTickets,
		IsGroupEvent:     p.IsGroupEvent,
		MinGroupSize:     minSize,
		MaxGroupSize:     maxSize,
		Status:           EventStatusPending,
		CreatedAt:        now.UTC(),
	}, nil
}

func (e Event) HasStarted(now time.Time) bool {
	return !now.Before(e.Date)
}

// CheckBookable runs the inventory-side booking rules. Inventory is checked
// before group-size bounds, so an oversized request on a nearly full event is
// reported as sold out.
func (e Event) CheckBookable(now time.Time, groupSize int) error {
	if e.HasStarted(now) {
		return ErrRegistrationClosed
	}
	if groupSize < 1 {
		return NewValidationError("group_size", "must be at least 1")
	}
	if e.RemainingTickets < groupSize {
		return ErrSoldOut
	}

	return e.CheckGroupSize(groupSize)
}

func (e Event) CheckGroupSize(groupSize int) error {
	if !e.IsGroupEvent {
		if groupSize != 1 {
			return NewValidationError("group_size", "this event does not support group bookings")
		}
		return nil
	}

	if groupSize < e.MinGroupSize || groupSize > e.MaxGroupSize {
		return NewValidationError("group_size", "invalid group size")
	}

	return nil
}
