package entity

import "time"

type EventSort string

const (
	EventSortDate       EventSort = "date"
	EventSortPrice      EventSort = "price"
	EventSortPopularity EventSort = "popularity"
)

// EventFilter narrows the upcoming event listing. Zero values mean no filter.
type EventFilter struct {
	Search    string
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	StartDate *time.Time
	EndDate   *time.Time
	Sort      EventSort
}

type DashboardStats struct {
	TotalEvents      int             `json:"total_events"`
	TotalBookings    int             `json:"total_bookings"`
	TotalAttendees   int             `json:"total_attendees"`
	PendingEvents    int             `json:"pending_events"`
	BookingsPerDay   []DailyCount    `json:"bookings_per_day"`
	EventsByCategory []CategoryCount `json:"events_by_category"`
}

type DailyCount struct {
	Day   string `json:"day" db:"day"`
	Count int    `json:"count" db:"count"`
}

type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count" db:"count"`
}
