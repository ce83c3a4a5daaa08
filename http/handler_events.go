package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"eventbooking/entity"
)

const (
	featuredEventsLimit = 3
	filterDateLayout    = "2006-01-02"
)

type landingResponse struct {
	Featured []entity.Event `json:"featured"`
}

type eventsResponse struct {
	Events     []entity.Event `json:"events"`
	Categories []string       `json:"categories"`
}

type postEventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Date         time.Time `json:"date"`
	TotalTickets int       `json:"total_tickets"`
	IsGroupEvent bool      `json:"is_group_event"`
	MinGroupSize int       `json:"min_group_size"`
	MaxGroupSize int       `json:"max_group_size"`
}

func (s Server) GetLanding(c echo.Context) error {
	ctx := c.Request().Context()

	s.bookingSvc.SweepBeforeRead(ctx)

	featured, err := s.events.Featured(ctx, s.now().UTC(), featuredEventsLimit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, landingResponse{Featured: featured})
}

func (s Server) GetEvents(c echo.Context) error {
	ctx := c.Request().Context()

	s.bookingSvc.SweepBeforeRead(ctx)

	events, err := s.events.ListUpcoming(ctx, s.now().UTC(), parseEventFilter(c))
	if err != nil {
		return err
	}

	categories, err := s.events.Categories(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, eventsResponse{
		Events:     events,
		Categories: categories,
	})
}

// parseEventFilter ignores values it cannot parse, so a bad query string
// falls back to the unfiltered listing.
func parseEventFilter(c echo.Context) entity.EventFilter {
	filter := entity.EventFilter{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Sort:     entity.EventSortDate,
	}

	switch entity.EventSort(c.QueryParam("sort")) {
	case entity.EventSortPrice:
		filter.Sort = entity.EventSortPrice
	case entity.EventSortPopularity:
		filter.Sort = entity.EventSortPopularity
	}

	if v, err := strconv.ParseFloat(c.QueryParam("min_price"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_price"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if v, err := time.Parse(filterDateLayout, c.QueryParam("start_date")); err == nil {
		filter.StartDate = &v
	}
	if v, err := time.Parse(filterDateLayout, c.QueryParam("end_date")); err == nil {
		filter.EndDate = &v
	}

	return filter
}

func (s Server) GetEvent(c echo.Context) error {
	event, err := s.events.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, event)
}

func (s Server) PostEvent(c echo.Context) error {
	var request postEventRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	event, err := entity.NewEvent(identity(c).UserID, entity.NewEventParams{
		Title:        request.Title,
		Description:  request.Description,
		Location:     request.Location,
		Category:     request.Category,
		Price:        request.Price,
		Date:         request.Date,
		TotalTickets: request.TotalTickets,
		IsGroupEvent: request.IsGroupEvent,
		MinGroupSize: request.MinGroupSize,
		MaxGroupSize: request.MaxGroupSize,
	}, s.now())
	if err != nil {
		return err
	}

	if err := s.events.Store(c.Request().Context(), event); err != nil {
		return err
	}

	s.logActivity(c, "event_created", fmt.Sprintf("Created event %s", event.Title))

	return c.JSON(http.StatusCreated, event)
}

func (s Server) DeleteOwnEvent(c echo.Context) error {
	event, err := s.events.Delete(c.Request().Context(), c.Param("id"), identity(c).UserID)
	if err != nil {
		return err
	}

	s.logActivity(c, "event_deleted", fmt.Sprintf("Deleted event %s", event.Title))

	return c.NoContent(http.StatusNoContent)
}

type attendeesResponse struct {
	Bookings       []entity.Booking `json:"bookings"`
	TotalAttendees int              `json:"total_attendees"`
}

// GetAttendees lists the active bookings of an event. Organizers only see
// their own events.
func (s Server) GetAttendees(c echo.Context) error {
	ctx := c.Request().Context()
	caller := identity(c)

	event, err := s.events.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if caller.Role == entity.RoleOrganizer && event.OrganizerID != caller.UserID {
		return fmt.Errorf("event %s belongs to another organizer: %w", event.EventID, entity.ErrForbidden)
	}

	bookings, err := s.bookings.ListByEvent(ctx, event.EventID)
	if err != nil {
		return err
	}

	active := lo.Filter(bookings, func(b entity.Booking, _ int) bool {
		return b.PaymentStatus != entity.PaymentStatusFailed
	})

	return c.JSON(http.StatusOK, attendeesResponse{
		Bookings: active,
		TotalAttendees: lo.SumBy(active, func(b entity.Booking) int {
			return b.GroupSize
		}),
	})
}
