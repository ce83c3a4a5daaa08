package entity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/entity"
)

func TestAttendee_Validate(t *testing.T) {
	valid := entity.Attendee{
		Name:   "Ada",
		Email:  "ada@example.com",
		Mobile: "555-0100",
		Branch: "CSE",
		Year:   "3",
	}
	require.NoError(t, valid.Validate())

	missingBranch := valid
	missingBranch.Branch = " "
	assert.ErrorIs(t, missingBranch.Validate(), entity.ErrValidation)

	badEmail := valid
	badEmail.Email = "ada"
	assert.ErrorIs(t, badEmail.Validate(), entity.ErrValidation)
}

func TestBooking_transitions(t *testing.T) {
	now := time.Now()

	b := entity.Booking{BookingID: "b-1", PaymentStatus: entity.PaymentStatusPending}
	require.NoError(t, b.Confirm("PAY-1", now))
	assert.Equal(t, entity.PaymentStatusSucceeded, b.PaymentStatus)
	assert.Equal(t, "PAY-1", b.PaymentID)

	assert.Error(t, b.Confirm("PAY-2", now), "succeeded is terminal")
	assert.Error(t, b.Fail(now), "succeeded is terminal")

	failed := entity.Booking{BookingID: "b-2", PaymentStatus: entity.PaymentStatusPending}
	require.NoError(t, failed.Fail(now))
	assert.False(t, failed.IsActive())
	assert.Error(t, failed.Confirm("PAY-3", now))
}

func TestPaymentIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(entity.NewDirectPaymentID(), "direct_booking_"))
	assert.True(t, strings.HasPrefix(entity.NewPendingPaymentID(), "booking_"))
	assert.NotEqual(t, entity.NewPendingPaymentID(), entity.NewPendingPaymentID())
}

func TestIdentity_RequireRole(t *testing.T) {
	student := entity.Identity{UserID: "u-1", Role: entity.RoleStudent}

	assert.NoError(t, student.RequireRole(entity.RoleStudent))
	assert.ErrorIs(t, student.RequireRole(entity.RoleOrganizer, entity.RoleAdmin), entity.ErrForbidden)
}
