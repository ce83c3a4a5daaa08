package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v3"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Attendee struct {
	Name   string `json:"name" db:"name"`
	Email  string `json:"email" db:"email"`
	Mobile string `json:"mobile" db:"mobile"`
	Branch string `json:"branch" db:"branch"`
	Year   string `json:"year" db:"year"`
}

func (a Attendee) Normalize() Attendee {
	return Attendee{
		Name:   strings.TrimSpace(a.Name),
		Email:  strings.TrimSpace(a.Email),
		Mobile: strings.TrimSpace(a.Mobile),
		Branch: strings.TrimSpace(a.Branch),
		Year:   strings.TrimSpace(a.Year),
	}
}

func (a Attendee) Validate() error {
	a = a.Normalize()

	switch {
	case a.Name == "":
		return NewValidationError("name", "is required")
	case a.Email == "":
		return NewValidationError("email", "is required")
	case !strings.Contains(a.Email, "@"):
		return NewValidationError("email", "is not a valid email address")
	case a.Mobile == "":
		return NewValidationError("mobile", "is required")
	case a.Branch == "":
		return NewValidationError("branch", "is required")
	case a.Year == "":
		return NewValidationError("year", "is required")
	}

	return nil
}

type Booking struct {
	BookingID string `json:"booking_id" db:"booking_id"`
	UserID    string `json:"user_id" db:"user_id"`
	EventID   string `json:"event_id" db:"event_id"`
	GroupSize int    `json:"group_size" db:"group_size"`

	Attendee `json:"attendee"`

	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentID     string        `json:"payment_id" db:"payment_id"`

	BookingDate time.Time `json:"booking_date" db:"booking_date"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func NewDirectPaymentID() string {
	return "direct_booking_" + shortuuid.New()
}

func NewPendingPaymentID() string {
	return "booking_" + shortuuid.New()
}

// Confirm moves a pending booking to succeeded and records the provider's
// payment id.
func (b *Booking) Confirm(paymentID string, now time.Time) error {
	if b.PaymentStatus != PaymentStatusPending {
		return fmt.Errorf("booking %s cannot be confirmed from status %s", b.BookingID, b.PaymentStatus)
	}
	if paymentID == "" {
		return NewValidationError("payment_id", "is required")
	}

	b.PaymentStatus = PaymentStatusSucceeded
	b.PaymentID = paymentID
	b.UpdatedAt = now.UTC()

	return nil
}

func (b *Booking) Fail(now time.Time) error {
	if b.PaymentStatus != PaymentStatusPending {
		return fmt.Errorf("booking %s cannot fail from status %s", b.BookingID, b.PaymentStatus)
	}

	b.PaymentStatus = PaymentStatusFailed
	b.UpdatedAt = now.UTC()

	return nil
}

func (b Booking) IsActive() bool {
	return b.PaymentStatus != PaymentStatusFailed
}
