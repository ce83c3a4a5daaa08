package http

import (
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"eventbooking/entity"
)

type errorResponse struct {
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Field      string `json:"field,omitempty"`
}

// errorHandler turns domain errors into a message the client can show and a
// page it can safely go to next.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, resp := errorToResponse(err, c)
	if status == http.StatusInternalServerError {
		log.FromContext(c.Request().Context()).WithError(err).Error("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		log.FromContext(c.Request().Context()).WithError(err).Error("Could not write error response")
	}
}

func errorToResponse(err error, c echo.Context) (int, errorResponse) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, errorResponse{Message: msg}
	}

	var validationErr entity.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, errorResponse{
			Message: validationErr.Error(),
			Field:   validationErr.Field,
		}
	}

	eventsPage := "/events"
	if id := c.Param("id"); id != "" {
		eventsPage = "/events/" + id
	}

	switch {
	case errors.Is(err, entity.ErrSoldOut):
		return http.StatusConflict, errorResponse{Message: "Sorry, this event is sold out.", RedirectTo: "/events"}
	case errors.Is(err, entity.ErrRegistrationClosed):
		return http.StatusGone, errorResponse{Message: "Registration for this event is closed.", RedirectTo: "/events"}
	case errors.Is(err, entity.ErrDuplicateBooking):
		return http.StatusConflict, errorResponse{Message: "You have already booked this event.", RedirectTo: "/bookings"}
	case errors.Is(err, entity.ErrPaymentIncomplete):
		return http.StatusPaymentRequired, errorResponse{Message: "Please complete the payment first.", RedirectTo: eventsPage + "/payments"}
	case errors.Is(err, entity.ErrPaymentFailed):
		return http.StatusPaymentRequired, errorResponse{Message: "Payment failed. Please try again.", RedirectTo: "/events"}
	case errors.Is(err, entity.ErrAlreadyReviewed):
		return http.StatusConflict, errorResponse{Message: "You have already reviewed this event.", RedirectTo: eventsPage + "/reviews"}
	case errors.Is(err, entity.ErrNotAttended):
		return http.StatusForbidden, errorResponse{Message: "You can only review events you have booked.", RedirectTo: "/bookings"}
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, errorResponse{Message: "Not found."}
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden, errorResponse{Message: "You are not allowed to do that.", RedirectTo: "/events"}
	}

	return http.StatusInternalServerError, errorResponse{Message: "Something went wrong. Please try again."}
}
