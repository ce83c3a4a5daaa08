package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"eventbooking/entity"
	"eventbooking/ticket"
)

const (
	activityPerPage       = 20
	dashboardActivityRows = 10
)

type dashboardResponse struct {
	entity.DashboardStats
	PendingApproval []entity.Event    `json:"pending_approval"`
	RecentActivity  []entity.Activity `json:"recent_activity"`
}

type activityResponse struct {
	Activities []entity.Activity `json:"activities"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
}

func (s Server) GetAdminDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := s.events.DashboardStats(ctx, s.now().UTC())
	if err != nil {
		return err
	}

	pending, err := s.events.ListByStatus(ctx, entity.EventStatusPending)
	if err != nil {
		return err
	}

	activities, _, err := s.activities.List(ctx, 1, dashboardActivityRows)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		DashboardStats:  stats,
		PendingApproval: pending,
		RecentActivity:  activities,
	})
}

func (s Server) GetAdminEvents(c echo.Context) error {
	events, err := s.events.ListAll(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, events)
}

func (s Server) PostApproveEvent(c echo.Context) error {
	return s.moderateEvent(c, entity.EventStatusApproved)
}

func (s Server) PostRejectEvent(c echo.Context) error {
	return s.moderateEvent(c, entity.EventStatusRejected)
}

func (s Server) moderateEvent(c echo.Context, status entity.EventStatus) error {
	event, err := s.events.UpdateStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return err
	}

	s.logActivity(c, "event_"+string(status), fmt.Sprintf("Event %s marked as %s", event.Title, status))

	return c.JSON(http.StatusOK, event)
}

func (s Server) DeleteEvent(c echo.Context) error {
	event, err := s.events.Delete(c.Request().Context(), c.Param("id"), "")
	if err != nil {
		return err
	}

	s.logActivity(c, "event_deleted", fmt.Sprintf("Admin deleted event %s", event.Title))

	return c.NoContent(http.StatusNoContent)
}

func (s Server) GetActivity(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	activities, total, err := s.activities.List(c.Request().Context(), page, activityPerPage)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, activityResponse{
		Activities: activities,
		Page:       page,
		TotalPages: (total + activityPerPage - 1) / activityPerPage,
		Total:      total,
	})
}

func (s Server) GetReport(c echo.Context) error {
	events, err := s.events.ListAll(c.Request().Context())
	if err != nil {
		return err
	}

	now := s.now().UTC()

	report, err := ticket.RenderEventsReport(events, now)
	if err != nil {
		return err
	}

	s.logActivity(c, "report_generated", fmt.Sprintf("Generated events report with %d events", len(events)))

	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="events_report_%s.pdf"`, now.Format("20060102_150405")),
	)

	return c.Blob(http.StatusOK, "application/pdf", report)
}

func (s Server) PostReclaim(c echo.Context) error {
	result, err := s.bookingSvc.ReclaimExpired(c.Request().Context(), s.now().UTC())
	if err != nil {
		return err
	}

	s.logActivity(c, "events_reclaimed", fmt.Sprintf(
		"Deleted %d expired events and %d bookings, failed %d unpaid bookings",
		result.EventsDeleted, result.BookingsDeleted, result.PendingFailed,
	))

	return c.JSON(http.StatusOK, result)
}
