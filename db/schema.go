package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		event_id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		location VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL,
		price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
		date TIMESTAMPTZ NOT NULL,
		organizer_id VARCHAR(255) NOT NULL,
		total_tickets INT NOT NULL CHECK (total_tickets >= 1),
		remaining_tickets INT NOT NULL,
		is_group_event BOOLEAN NOT NULL DEFAULT FALSE,
		min_group_size INT NOT NULL DEFAULT 1,
		max_group_size INT NOT NULL DEFAULT 1,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT remaining_within_total CHECK (remaining_tickets >= 0 AND remaining_tickets <= total_tickets),
		CONSTRAINT group_size_bounds CHECK (min_group_size >= 1 AND max_group_size >= min_group_size)
	)`,
	`CREATE INDEX IF NOT EXISTS events_date_idx ON events (date)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		booking_id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		event_id UUID NOT NULL REFERENCES events (event_id),
		group_size INT NOT NULL CHECK (group_size >= 1),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		mobile VARCHAR(50) NOT NULL,
		branch VARCHAR(100) NOT NULL,
		year VARCHAR(20) NOT NULL,
		payment_status VARCHAR(20) NOT NULL,
		payment_id VARCHAR(255) NOT NULL UNIQUE,
		booking_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_user_event_idx
		ON bookings (user_id, event_id) WHERE payment_status <> 'failed'`,
	`CREATE TABLE IF NOT EXISTS notifications (
		notification_id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		event_id UUID NULL,
		channel VARCHAR(20) NOT NULL,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		sent BOOLEAN NOT NULL DEFAULT FALSE,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notification_preferences (
		user_id VARCHAR(255) PRIMARY KEY,
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		sms_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		event_updates BOOLEAN NOT NULL DEFAULT TRUE,
		event_reminders BOOLEAN NOT NULL DEFAULT TRUE,
		in_app BOOLEAN NOT NULL DEFAULT TRUE,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(50) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		activity_id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		activity_type VARCHAR(50) NOT NULL,
		description TEXT NOT NULL,
		ip_address VARCHAR(64) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS booking_reminders (
		booking_id UUID PRIMARY KEY REFERENCES bookings (booking_id) ON DELETE CASCADE,
		sent_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		review_id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		username VARCHAR(255) NOT NULL DEFAULT '',
		event_id UUID NOT NULL REFERENCES events (event_id) ON DELETE CASCADE,
		rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		review_text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_event_idx ON reviews (event_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS domain_events (
		event_id UUID PRIMARY KEY,
		published_at TIMESTAMPTZ NOT NULL,
		event_name VARCHAR(255) NOT NULL,
		event_payload JSONB NOT NULL
	)`,
}

func InitializeDatabaseSchema(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("could not initialize database schema: %w", err)
		}
	}

	return nil
}
