package entity

type SweepResult struct {
	EventIDs        []string `json:"event_ids"`
	BookingsDeleted int      `json:"bookings_deleted"`
}

type ReclaimResult struct {
	EventsDeleted   int `json:"events_deleted"`
	BookingsDeleted int `json:"bookings_deleted"`
	PendingFailed   int `json:"pending_failed"`
}
