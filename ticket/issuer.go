package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"eventbooking/entity"
	"eventbooking/metrics"
)

type FilesStorage interface {
	Put(ctx context.Context, name string, content []byte) error
}

type EventBus interface {
	Publish(ctx context.Context, event any) error
}

type Issuer struct {
	signer   Signer
	files    FilesStorage
	eventBus EventBus
	now      func() time.Time
}

func NewIssuer(signer Signer, files FilesStorage, eventBus EventBus) Issuer {
	if signer.key == nil {
		panic("missing signer")
	}
	if files == nil {
		panic("missing files")
	}
	if eventBus == nil {
		panic("missing eventBus")
	}

	return Issuer{
		signer:   signer,
		files:    files,
		eventBus: eventBus,
		now:      time.Now,
	}
}

// Issue builds the ticket of a paid booking and stores its PDF as
// ticket_<booking_id>.pdf, replacing an earlier copy. The payload depends
// only on the booking and the event, so issuing twice gives the same QR code.
func (i Issuer) Issue(ctx context.Context, booking entity.Booking, event entity.Event) (entity.TicketArtifact, error) {
	if booking.PaymentStatus != entity.PaymentStatusSucceeded {
		return entity.TicketArtifact{}, entity.ErrPaymentIncomplete
	}
	if booking.EventID != event.EventID {
		return entity.TicketArtifact{}, fmt.Errorf("booking %s is not for event %s", booking.BookingID, event.EventID)
	}

	payload, err := i.signer.Sign(entity.NewTicketPayload(booking, event))
	if err != nil {
		return entity.TicketArtifact{}, err
	}

	data, err := Encode(payload)
	if err != nil {
		return entity.TicketArtifact{}, err
	}

	qr, err := QRCode(data)
	if err != nil {
		return entity.TicketArtifact{}, err
	}

	generatedAt := i.now().UTC()

	document, err := RenderDocument(booking, event, qr, generatedAt)
	if err != nil {
		return entity.TicketArtifact{}, err
	}

	fileName := entity.TicketFileName(booking.BookingID)
	if err := i.files.Put(ctx, fileName, document); err != nil {
		return entity.TicketArtifact{}, fmt.Errorf("could not store ticket %s: %w", fileName, err)
	}

	metrics.TicketsIssued.Inc()

	err = i.eventBus.Publish(ctx, entity.TicketPrinted_v1{
		Header:    entity.NewEventHeaderWithIdempotencyKey(booking.BookingID),
		BookingID: booking.BookingID,
		UserID:    booking.UserID,
		FileName:  fileName,
	})
	if err != nil {
		log.FromContext(ctx).WithError(err).Warn("Could not publish TicketPrinted_v1")
	}

	return entity.TicketArtifact{
		Payload:     payload,
		QRCode:      qr,
		Document:    document,
		FileName:    fileName,
		GeneratedAt: generatedAt,
	}, nil
}

// Verify checks a scanned ticket payload.
func (i Issuer) Verify(ctx context.Context, data []byte) (entity.TicketPayload, error) {
	return i.signer.Verify(data)
}
