package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"eventbooking/entity"
)

type ActivitiesPostgresRepository struct {
	db *sqlx.DB
}

func NewActivitiesPostgresRepository(db *sqlx.DB) *ActivitiesPostgresRepository {
	if db == nil {
		panic("missing db")
	}

	return &ActivitiesPostgresRepository{db: db}
}

func (r *ActivitiesPostgresRepository) Store(ctx context.Context, activity entity.Activity) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO activities (activity_id, user_id, activity_type, description, ip_address, created_at)
		VALUES (:activity_id, :user_id, :activity_type, :description, :ip_address, :created_at)
		ON CONFLICT (activity_id) DO NOTHING
	`, activity)
	if err != nil {
		return fmt.Errorf("could not store activity: %w", err)
	}

	return nil
}

// List returns one page of the activity log, newest first. Pages start at 1.
func (r *ActivitiesPostgresRepository) List(ctx context.Context, page, perPage int) ([]entity.Activity, int, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM activities`); err != nil {
		return nil, 0, fmt.Errorf("could not count activities: %w", err)
	}

	activities := []entity.Activity{}
	err := r.db.SelectContext(ctx, &activities, `
		SELECT * FROM activities
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("could not list activities: %w", err)
	}

	return activities, total, nil
}
