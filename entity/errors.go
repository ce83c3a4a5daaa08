package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrSoldOut            = errors.New("event is sold out")
	ErrDuplicateBooking   = errors.New("event already booked by this user")
	ErrRegistrationClosed = errors.New("registration closed: event has already started")
	ErrPaymentIncomplete  = errors.New("payment not completed")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrValidation         = errors.New("validation failed")
	ErrNotAttended        = errors.New("only students who booked the event can review it")
	ErrAlreadyReviewed    = errors.New("event already reviewed by this user")
)

// ValidationError is a user-correctable input problem. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}
