package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"eventbooking/entity"
)

type putPreferencesRequest struct {
	EmailNotifications *bool   `json:"email_notifications"`
	SMSNotifications   *bool   `json:"sms_notifications"`
	EventUpdates       *bool   `json:"event_updates"`
	EventReminders     *bool   `json:"event_reminders"`
	InApp              *bool   `json:"in_app"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
}

func (s Server) GetNotifications(c echo.Context) error {
	notifications, err := s.notifications.ListByUser(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notifications)
}

func (s Server) GetNotificationPreferences(c echo.Context) error {
	prefs, err := s.notifications.GetPreferences(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, prefs)
}

// PutNotificationPreferences only changes the fields present in the body.
func (s Server) PutNotificationPreferences(c echo.Context) error {
	var request putPreferencesRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	ctx := c.Request().Context()

	prefs, err := s.notifications.GetPreferences(ctx, identity(c).UserID)
	if err != nil {
		return err
	}

	setIfPresent(&prefs.EmailNotifications, request.EmailNotifications)
	setIfPresent(&prefs.SMSNotifications, request.SMSNotifications)
	setIfPresent(&prefs.EventUpdates, request.EventUpdates)
	setIfPresent(&prefs.EventReminders, request.EventReminders)
	setIfPresent(&prefs.InApp, request.InApp)
	setIfPresent(&prefs.Email, request.Email)
	setIfPresent(&prefs.Phone, request.Phone)

	prefs.Email = strings.TrimSpace(prefs.Email)
	prefs.Phone = strings.TrimSpace(prefs.Phone)
	if prefs.Email != "" && !strings.Contains(prefs.Email, "@") {
		return entity.NewValidationError("email", "is not a valid email address")
	}

	if err := s.notifications.SavePreferences(ctx, prefs); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, prefs)
}

func setIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
