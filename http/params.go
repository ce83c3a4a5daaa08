package http

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"eventbooking/entity"
)

// validateIDParam answers 404 for an :id that is not a UUID. Every id in the
// routes is a UUID, and postgres rejects anything else with an error.
func validateIDParam(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Param("id"); id != "" {
			if _, err := uuid.Parse(id); err != nil {
				return fmt.Errorf("id %q: %w", id, entity.ErrNotFound)
			}
		}

		return next(c)
	}
}
