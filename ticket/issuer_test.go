package ticket_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/entity"
	"eventbooking/gateway"
	"eventbooking/ticket"
)

type eventBusMock struct {
	lock      sync.Mutex
	published []any
	err       error
}

func (m *eventBusMock) Publish(ctx context.Context, event any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.published = append(m.published, event)
	return m.err
}

func newIssuer(t *testing.T, files *gateway.FilesMock, bus *eventBusMock) ticket.Issuer {
	t.Helper()

	signer, err := ticket.NewSigner("test-key")
	require.NoError(t, err)

	return ticket.NewIssuer(signer, files, bus)
}

func fixture() (entity.Booking, entity.Event) {
	event := entity.Event{
		EventID:  "8a4f2f3e-1c1b-4a57-9f59-0c1d2e3f4a5b",
		Title:    "Go conference",
		Location: "Main hall",
		Date:     time.Date(2026, 11, 5, 18, 30, 0, 0, time.UTC),
	}
	booking := entity.Booking{
		BookingID: "b1c2d3e4-0000-4000-8000-000000000001",
		UserID:    "user-1",
		EventID:   event.EventID,
		GroupSize: 1,
		Attendee: entity.Attendee{
			Name:   "Ada Lovelace",
			Email:  "ada@example.com",
			Mobile: "555-0100",
			Branch: "CSE",
			Year:   "3",
		},
		PaymentStatus: entity.PaymentStatusSucceeded,
		PaymentID:     "direct_booking_abc",
		BookingDate:   time.Date(2026, 10, 1, 9, 15, 0, 0, time.UTC),
	}

	return booking, event
}

func TestIssuer_Issue(t *testing.T) {
	ctx := context.Background()
	files := &gateway.FilesMock{}
	bus := &eventBusMock{}
	issuer := newIssuer(t, files, bus)

	booking, event := fixture()

	first, err := issuer.Issue(ctx, booking, event)
	require.NoError(t, err)

	assert.Equal(t, "ticket_"+booking.BookingID+".pdf", first.FileName)
	assert.Equal(t, "2026-11-05 18:30", first.Payload.EventDate)
	assert.Equal(t, "2026-10-01 09:15", first.Payload.BookingDate)
	assert.Equal(t, "Ada Lovelace", first.Payload.Attendee.Name)
	assert.NotEmpty(t, first.Payload.Signature)

	assert.True(t, bytes.HasPrefix(first.QRCode, []byte("\x89PNG")))
	assert.True(t, bytes.HasPrefix(first.Document, []byte("%PDF")))

	stored, err := files.Get(ctx, first.FileName)
	require.NoError(t, err)
	assert.Equal(t, first.Document, stored)

	second, err := issuer.Issue(ctx, booking, event)
	require.NoError(t, err)
	assert.Equal(t, first.Payload, second.Payload)
	assert.Equal(t, first.QRCode, second.QRCode)
	assert.Equal(t, 2, files.Puts())

	require.Len(t, bus.published, 2)
	printed, ok := bus.published[0].(entity.TicketPrinted_v1)
	require.True(t, ok)
	assert.Equal(t, booking.BookingID, printed.BookingID)
}

func TestIssuer_Issue_payment_incomplete(t *testing.T) {
	ctx := context.Background()
	files := &gateway.FilesMock{}
	issuer := newIssuer(t, files, &eventBusMock{})

	booking, event := fixture()

	for _, status := range []entity.PaymentStatus{entity.PaymentStatusPending, entity.PaymentStatusFailed} {
		booking.PaymentStatus = status

		_, err := issuer.Issue(ctx, booking, event)
		assert.ErrorIs(t, err, entity.ErrPaymentIncomplete)
	}
	assert.Equal(t, 0, files.Puts())
}

func TestIssuer_Issue_publish_failure_is_not_fatal(t *testing.T) {
	issuer := newIssuer(t, &gateway.FilesMock{}, &eventBusMock{err: errors.New("broker down")})

	booking, event := fixture()

	_, err := issuer.Issue(context.Background(), booking, event)
	assert.NoError(t, err)
}

func TestIssuer_Verify(t *testing.T) {
	ctx := context.Background()
	issuer := newIssuer(t, &gateway.FilesMock{}, &eventBusMock{})

	booking, event := fixture()

	artifact, err := issuer.Issue(ctx, booking, event)
	require.NoError(t, err)

	data, err := ticket.Encode(artifact.Payload)
	require.NoError(t, err)

	payload, err := issuer.Verify(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, artifact.Payload, payload)

	tampered := artifact.Payload
	tampered.GroupSize = 5
	data, err = json.Marshal(tampered)
	require.NoError(t, err)

	_, err = issuer.Verify(ctx, data)
	assert.ErrorIs(t, err, entity.ErrValidation)

	otherSigner, err := ticket.NewSigner("other-key")
	require.NoError(t, err)
	_, err = otherSigner.Verify(data)
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = issuer.Verify(ctx, []byte("not json"))
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestRenderEventsReport_multiple_pages(t *testing.T) {
	events := make([]entity.Event, 0, 120)
	for i := 0; i < 120; i++ {
		events = append(events, entity.Event{
			Title:            "Event with a rather long title that needs truncating in the report",
			Date:             time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC),
			Status:           entity.EventStatusApproved,
			TotalTickets:     100,
			RemainingTickets: 42,
		})
	}

	pdf, err := ticket.RenderEventsReport(events, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	match := regexp.MustCompile(`/Count (\d+)`).FindSubmatch(pdf)
	require.NotNil(t, match)
	pages, err := strconv.Atoi(string(match[1]))
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}
