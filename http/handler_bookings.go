package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventbooking/entity"
)

type postBookingRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Branch    string `json:"branch"`
	Year      string `json:"year"`
	GroupSize int    `json:"group_size"`
}

func (r postBookingRequest) attendee() entity.Attendee {
	return entity.Attendee{
		Name:   r.Name,
		Email:  r.Email,
		Mobile: r.Mobile,
		Branch: r.Branch,
		Year:   r.Year,
	}
}

func (r postBookingRequest) groupSize() int {
	if r.GroupSize == 0 {
		return 1
	}
	return r.GroupSize
}

type bookingResponse struct {
	Booking    entity.Booking `json:"booking"`
	Message    string         `json:"message,omitempty"`
	RedirectTo string         `json:"redirect_to,omitempty"`
}

func (s Server) PostBooking(c echo.Context) error {
	var request postBookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	eventID := c.Param("id")

	booking, err := s.bookingSvc.BookDirect(
		c.Request().Context(),
		identity(c),
		eventID,
		request.attendee(),
		request.groupSize(),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bookingResponse{
		Booking:    booking,
		Message:    "Booking successful!",
		RedirectTo: "/events/" + eventID + "/ticket",
	})
}

// PostPayment reserves the seats and returns the pending booking. The client
// completes the payment with the provider, which redirects back to the
// callback.
func (s Server) PostPayment(c echo.Context) error {
	var request postBookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	eventID := c.Param("id")

	booking, err := s.bookingSvc.StartPayment(
		c.Request().Context(),
		identity(c),
		eventID,
		request.attendee(),
		request.groupSize(),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bookingResponse{
		Booking:    booking,
		RedirectTo: "/events/" + eventID + "/payments/callback",
	})
}

func (s Server) GetPaymentCallback(c echo.Context) error {
	eventID := c.Param("id")

	booking, err := s.bookingSvc.ConfirmPayment(
		c.Request().Context(),
		identity(c),
		eventID,
		c.QueryParam("paymentId"),
		c.QueryParam("PayerID"),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookingResponse{
		Booking:    booking,
		Message:    "Payment successful!",
		RedirectTo: "/events/" + eventID + "/ticket",
	})
}

func (s Server) GetBookings(c echo.Context) error {
	bookings, err := s.bookings.ListByUser(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookings)
}
